package main

import "github.com/pkg/errors"

func errWrongArgCount(cmd, want string) error {
	return errors.Errorf("usage: gopam %s %s", cmd, want)
}

func errSolverNoSolution() error {
	return errors.New("the solver found no solution for this request")
}

package gopam

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gopam/gopam/log"
)

// Confirm is the interactive-prompting hook the executor calls before a
// destructive change. Under -y the caller should pass a Confirm that
// always returns true.
type Confirm func(prompt string) bool

// HasDestructiveChange reports whether sol contains any removal or
// downgrade, the trigger for the confirmation prompt before Execute runs.
func (sol *Solution) HasDestructiveChange() bool {
	if len(sol.ToRemove) > 0 {
		return true
	}
	for _, a := range sol.ToAdd {
		if a.From != nil && a.To.Version.Compare(a.From.Version) < 0 {
			return true
		}
	}
	return false
}

// Execute runs a resolved Solution to completion: sequential removals
// (durably persisted after each), then a parallel DAG of install/recompile
// jobs bounded by Config.Workers. root is re-Load-ed by every worker so
// each job observes a fresh State.
func Execute(root string, sol *Solution, logger *log.Logger, confirm Confirm) error {
	if sol.HasDestructiveChange() {
		if !confirm("This operation will remove or downgrade packages. Continue?") {
			logger.Logln("aborted")
			return nil
		}
	}

	// Sequential removals, durability: persist Installed after each one.
	for _, nv := range sol.ToRemove {
		st, err := Load(root)
		if err != nil {
			return err
		}
		if !st.Installed.Has(nv) {
			continue
		}
		logger.Logf("removing %s", nv)
		if err := st.removeOne(nv, logger, confirm); err != nil {
			return err
		}
		st.Installed.Remove(nv)
		if err := writeNVSet(st.Paths.InstalledFile(st.CurrentAlias), st.Installed); err != nil {
			return err
		}
	}

	if len(sol.ToAdd) == 0 {
		return nil
	}

	initial, err := Load(root)
	if err != nil {
		return err
	}
	workers := initial.Config.Workers
	if workers < 1 {
		workers = 1
	}

	n := len(sol.ToAdd)
	nodeDone := make([]chan struct{}, n)
	nodeOK := make([]bool, n)
	for i := range nodeDone {
		nodeDone[i] = make(chan struct{})
	}

	sem := make(chan struct{}, workers)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := range sol.ToAdd {
		i := i
		g.Go(func() error {
			defer close(nodeDone[i])

			for _, p := range sol.Predecessors(i) {
				select {
				case <-nodeDone[p]:
					if !nodeOK[p] {
						return nil // a predecessor failed; this node never runs, not itself an error
					}
				case <-ctx.Done():
					return nil
				}
			}

			select {
			case <-ctx.Done():
				return nil
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			st, err := Load(root)
			if err != nil {
				return err
			}

			action := sol.ToAdd[i]
			if err := st.runAction(action, logger, confirm); err != nil {
				logger.Warnf("%s: %v", action.To, err)
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			cur, err := readNVSet(st.Paths.InstalledFile(st.CurrentAlias))
			if err != nil {
				return err
			}
			if action.From != nil {
				cur.Remove(*action.From)
			}
			cur.Add(action.To)
			if err := writeNVSet(st.Paths.InstalledFile(st.CurrentAlias), cur); err != nil {
				return err
			}
			reinstall, err := readNVSet(st.Paths.ReinstallFile(st.CurrentAlias))
			if err != nil {
				return err
			}
			reinstall.Remove(action.To)
			if err := writeNVSet(st.Paths.ReinstallFile(st.CurrentAlias), reinstall); err != nil {
				return err
			}
			nodeOK[i] = true
			return nil
		})
	}

	return g.Wait()
}

// runAction executes one to-add DAG node: Change removes the previous NV
// (if any) then installs the new one; Recompile removes then reinstalls
// the same NV.
func (s *State) runAction(a ResolvedAction, logger *log.Logger, confirm Confirm) error {
	if a.From != nil {
		logger.Logf("removing %s", *a.From)
		if err := s.removeOne(*a.From, logger, confirm); err != nil {
			return err
		}
	} else if a.Kind == ActionRecompile {
		logger.Logf("removing %s (recompile)", a.To)
		if err := s.removeOne(a.To, logger, confirm); err != nil {
			return err
		}
	}
	logger.Logf("installing %s", a.To)
	if err := s.installOne(a.To, logger, confirm); err != nil {
		// compensating removal of the half-installed NV.
		_ = s.removeOne(a.To, logger, confirm)
		return err
	}
	return nil
}

package gopam

import "github.com/gopam/gopam/log"

// RemoteList returns the configured repositories in priority order
// (`gopam remote list`).
func (s *State) RemoteList() []Repository {
	return s.Config.Repos
}

// RemoteAdd registers a new repository at the end of the priority list,
// initializes its local mirror, and runs Update so its packages become
// immediately Available (`gopam remote add`).
func (s *State) RemoteAdd(repo Repository, logger *log.Logger) error {
	if _, ok := s.Config.RepoByName(repo.Name); ok {
		return errAlreadyInitialized(string(repo.Name))
	}
	b, err := NewBackend(repo.Kind, s.Paths)
	if err != nil {
		return err
	}
	if err := b.Init(repo); err != nil {
		return err
	}
	s.Config.Repos = append(s.Config.Repos, repo)
	if err := writeGlobalConfig(s.Paths.ConfigFile(), &s.Config); err != nil {
		return err
	}
	_, err = Update(s.Paths.Root, logger)
	return err
}

// RemoteRemove drops a configured repository (`gopam remote rm`). Packages
// it owned remain in the global opam/descr/archive views until the next
// Update rebuilds them from the remaining repos' priority order.
func (s *State) RemoteRemove(name RepoName) error {
	if _, ok := s.Config.RepoByName(name); !ok {
		return errUnknownRepo(name)
	}
	s.Config.removeRepo(name)
	return writeGlobalConfig(s.Paths.ConfigFile(), &s.Config)
}

package gopam

import (
	"os"
	"path/filepath"

	"github.com/gopam/gopam/log"
)

// removeOne runs nv's remove script and erases its installed artifacts,
// prompting before deleting any misc file (a caller-chosen absolute path
// outside the switch tree, mirroring copyArtifacts' install-side prompt).
// If the build dir is gone (e.g. a prior `gopam upgrade` already cleared
// it), the remove script falls back to running from $ROOT, with a logged
// warning.
func (s *State) removeOne(nv NV, logger *log.Logger, confirm Confirm) error {
	buildDir := s.Paths.BuildDir(s.CurrentAlias, nv)
	workDir := buildDir
	if ok, _ := isDir(workDir); !ok {
		logger.Warnf("build dir for %s is gone, running remove script from %s", nv, s.Paths.Root)
		workDir = s.Paths.Root
	}

	if m, err := s.Manifest(nv); err == nil && len(m.Remove) > 0 {
		cd, err := readCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler))
		if err != nil {
			return err
		}
		env, err := s.buildEnv(cd)
		if err != nil {
			return err
		}
		for _, cmdArgs := range m.Remove {
			if len(cmdArgs) == 0 {
				continue
			}
			args, err := s.SubstStrings(cmdArgs)
			if err != nil {
				return err
			}
			if err := runIn(workDir, env, args); err != nil {
				return errRemoveFailed(nv, err)
			}
		}
	}

	descr, err := readInstallDescriptor(s.installDescrPath(nv.Name))
	if err == nil {
		binDir := s.Paths.BinDir(s.CurrentAlias)
		for _, fp := range descr.Bin {
			dst := fp.Dst
			if dst == "" {
				dst = filepath.Base(fp.Src)
			}
			os.Remove(filepath.Join(binDir, dst))
		}
		for _, fp := range descr.Misc {
			if ok, _ := isRegular(fp.Dst); ok {
				if !confirm("remove " + fp.Dst + " (outside the switch tree)?") {
					continue
				}
			}
			os.Remove(fp.Dst)
		}
	}

	os.RemoveAll(s.Paths.LibDir(s.CurrentAlias, nv.Name))
	os.Remove(s.installDescrPath(nv.Name))
	os.Remove(s.buildConfigPath(nv.Name))
	os.RemoveAll(buildDir)
	return nil
}

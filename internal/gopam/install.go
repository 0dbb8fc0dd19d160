package gopam

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gopam/gopam/log"
)

// installOne runs the full build-and-install sequence for nv: fetch,
// extract, substitute, build, copy artifacts, and persist the package's
// BuildConfig/InstallDescriptor, with consistency checks applied before
// anything is considered durable.
func (s *State) installOne(nv NV, logger *log.Logger, confirm Confirm) error {
	m, err := s.Manifest(nv)
	if err != nil {
		return err
	}
	for _, dep := range m.Depends {
		if !s.Available.ByNameHasName(dep) {
			return errInconsistentRepo(nv, dep)
		}
	}

	archivePath, err := s.ensureArchive(nv)
	if err != nil {
		return err
	}

	buildDir := s.Paths.BuildDir(s.CurrentAlias, nv)
	logger.Vlogf("extracting %s into %s", archivePath, buildDir)
	if err := extractArchive(archivePath, buildDir); err != nil {
		return err
	}

	for _, name := range m.Substs {
		if err := s.SubstFile(filepath.Join(buildDir, name)); err != nil {
			return err
		}
	}

	cd, err := readCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler))
	if err != nil {
		return errors.Wrap(err, "reading compiler description")
	}
	env, err := s.buildEnv(cd)
	if err != nil {
		return err
	}

	for _, cmdArgs := range m.Build {
		if len(cmdArgs) == 0 {
			continue
		}
		args, err := s.SubstStrings(cmdArgs)
		if err != nil {
			return err
		}
		if err := runIn(buildDir, env, args); err != nil {
			var exitCode int
			if ee, ok := err.(*exec.ExitError); ok {
				exitCode = ee.ExitCode()
			}
			return errBuildFailed(nv, exitCode, err)
		}
	}

	descr, err := readInstallDescriptor(filepath.Join(buildDir, string(nv.Name)+".install"))
	if err != nil {
		return err
	}
	bc, err := readBuildConfig(filepath.Join(buildDir, string(nv.Name)+".config"))
	if err != nil {
		return err
	}
	if err := s.checkBuildConfig(m, bc); err != nil {
		return err
	}

	if err := s.copyArtifacts(nv, buildDir, descr, confirm); err != nil {
		return err
	}

	if err := writeBuildConfig(s.buildConfigPath(nv.Name), bc); err != nil {
		return err
	}
	return writeInstallDescriptor(s.installDescrPath(nv.Name), descr)
}

// runIn executes args[0] with args[1:] in dir under env, streaming its
// stdout/stderr straight to the controlling terminal.
func runIn(dir string, env []string, args []string) error {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ByNameHasName is a PkgName-only existence probe over an NVSet, used when
// checking a manifest's Depends against Available rather than Installed.
func (s NVSet) ByNameHasName(name PkgName) bool {
	_, ok := s.ByName(name)
	return ok
}

// checkBuildConfig enforces the ConfigMismatch/UnresolvedRequire
// invariants: every section the build actually produced must have been
// declared by the manifest, and every section it Requires must be
// resolvable either locally or through a direct dependency's own
// BuildConfig.
func (s *State) checkBuildConfig(m *Manifest, bc *BuildConfig) error {
	declared := map[Section]bool{}
	for _, sec := range m.Libraries {
		declared[sec] = true
	}
	for _, sec := range m.Syntax {
		declared[sec] = true
	}

	local := map[Section]bool{}
	for _, sec := range bc.sections() {
		local[sec.Name] = true
	}

	for _, sec := range bc.sections() {
		if !declared[sec.Name] {
			return errConfigMismatch(sec.Name)
		}
		for _, req := range sec.Requires {
			if local[req] {
				continue
			}
			if s.dependencyProvidesSection(m.Depends, req) {
				continue
			}
			return errUnresolvedRequire(req)
		}
	}
	return nil
}

func (s *State) dependencyProvidesSection(depends []PkgName, want Section) bool {
	for _, dep := range depends {
		bc, err := readBuildConfig(s.buildConfigPath(dep))
		if err != nil {
			continue
		}
		for _, sec := range bc.sections() {
			if sec.Name == want {
				return true
			}
		}
	}
	return false
}

// copyArtifacts installs the lib/bin/misc files an InstallDescriptor names.
// Lib files are overwritten without asking; an existing bin or misc
// destination is overwritten only if confirm approves, and is otherwise
// left in place.
func (s *State) copyArtifacts(nv NV, buildDir string, descr *InstallDescriptor, confirm Confirm) error {
	libDir := s.Paths.LibDir(s.CurrentAlias, nv.Name)
	for _, fp := range descr.Lib {
		dst := fp.Dst
		if dst == "" {
			dst = filepath.Base(fp.Src)
		}
		if err := copyFile(filepath.Join(buildDir, fp.Src), filepath.Join(libDir, dst)); err != nil {
			return errors.Wrapf(err, "installing lib artifact %s", fp.Src)
		}
	}

	binDir := s.Paths.BinDir(s.CurrentAlias)
	for _, fp := range descr.Bin {
		dst := fp.Dst
		if dst == "" {
			dst = filepath.Base(fp.Src)
		}
		dstPath := filepath.Join(binDir, dst)
		if ok, _ := isRegular(dstPath); ok {
			if !confirm("overwrite existing binary " + dst + "?") {
				continue
			}
		}
		if err := copyFile(filepath.Join(buildDir, fp.Src), dstPath); err != nil {
			return errors.Wrapf(err, "installing bin artifact %s", fp.Src)
		}
		os.Chmod(dstPath, 0o755)
	}

	for _, fp := range descr.Misc {
		if ok, _ := isRegular(fp.Dst); ok {
			if !confirm("overwrite " + fp.Dst + " (outside the switch tree)?") {
				continue
			}
		}
		if err := copyFile(filepath.Join(buildDir, fp.Src), fp.Dst); err != nil {
			return errors.Wrapf(err, "installing misc artifact %s", fp.Src)
		}
	}
	return nil
}

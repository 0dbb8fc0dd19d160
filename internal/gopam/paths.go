package gopam

import "path/filepath"

// Paths maps logical identifiers (switch, package, repository, file kind)
// onto filesystem paths under a single root directory. It holds no state
// beyond the root and is safe to share.
type Paths struct {
	Root string
}

func NewPaths(root string) Paths { return Paths{Root: root} }

func (p Paths) LockFile() string    { return filepath.Join(p.Root, ".lock") }
func (p Paths) ConfigFile() string  { return filepath.Join(p.Root, "config") }
func (p Paths) AliasesFile() string { return filepath.Join(p.Root, "aliases") }

func (p Paths) RepoDir(name RepoName) string  { return filepath.Join(p.Root, "repo", string(name)) }
func (p Paths) RepoIndexFile() string         { return filepath.Join(p.Root, "repo", "index") }
func (p Paths) RepoConfigFile(n RepoName) string {
	return filepath.Join(p.RepoDir(n), "config")
}
func (p Paths) RepoPackageDir(n RepoName, nv NV) string {
	return filepath.Join(p.RepoDir(n), "packages", nv.String())
}
func (p Paths) RepoUpdatedFile(n RepoName) string {
	return filepath.Join(p.RepoDir(n), "updated")
}
func (p Paths) RepoArchiveFile(n RepoName, nv NV) string {
	return filepath.Join(p.RepoDir(n), "archives", nv.String()+".tar.gz")
}

func (p Paths) GlobalOpamDir() string      { return filepath.Join(p.Root, "opam") }
func (p Paths) GlobalOpamFile(nv NV) string { return filepath.Join(p.GlobalOpamDir(), nv.String()+".opam") }
func (p Paths) GlobalDescrDir() string     { return filepath.Join(p.Root, "descr") }
func (p Paths) GlobalDescrFile(nv NV) string { return filepath.Join(p.GlobalDescrDir(), nv.String()) }
func (p Paths) GlobalArchiveDir() string   { return filepath.Join(p.Root, "archive") }
func (p Paths) GlobalArchiveFile(nv NV) string {
	return filepath.Join(p.GlobalArchiveDir(), nv.String()+".tar.gz")
}
func (p Paths) GlobalCompilerDir() string { return filepath.Join(p.Root, "compiler") }
func (p Paths) GlobalCompilerFile(v CompilerVersion) string {
	return filepath.Join(p.GlobalCompilerDir(), string(v)+".comp")
}

func (p Paths) SwitchDir(a Alias) string       { return filepath.Join(p.Root, string(a)) }
func (p Paths) InstalledFile(a Alias) string   { return filepath.Join(p.SwitchDir(a), "installed") }
func (p Paths) ReinstallFile(a Alias) string   { return filepath.Join(p.SwitchDir(a), "reinstall") }
func (p Paths) SwitchConfigDir(a Alias) string { return filepath.Join(p.SwitchDir(a), "config") }
func (p Paths) PkgConfigFile(a Alias, name PkgName) string {
	return filepath.Join(p.SwitchConfigDir(a), string(name)+".config")
}
func (p Paths) SwitchInstallDir(a Alias) string { return filepath.Join(p.SwitchDir(a), "install") }
func (p Paths) PkgInstallFile(a Alias, name PkgName) string {
	return filepath.Join(p.SwitchInstallDir(a), string(name)+".install")
}
func (p Paths) BuildDir(a Alias, nv NV) string {
	return filepath.Join(p.SwitchDir(a), "build", nv.String())
}
func (p Paths) LibDir(a Alias, name PkgName) string {
	return filepath.Join(p.SwitchDir(a), "lib", string(name))
}
func (p Paths) BinDir(a Alias) string      { return filepath.Join(p.SwitchDir(a), "bin") }
func (p Paths) DocDir(a Alias) string      { return filepath.Join(p.SwitchDir(a), "doc") }
func (p Paths) StublibsDir(a Alias) string { return filepath.Join(p.SwitchDir(a), "stublibs") }

// SwitchSubdirs lists every directory `init_switch` must create under a fresh
// switch tree, in creation order.
func (p Paths) SwitchSubdirs(a Alias) []string {
	return []string{
		p.SwitchConfigDir(a),
		p.SwitchInstallDir(a),
		filepath.Join(p.SwitchDir(a), "build"),
		filepath.Join(p.SwitchDir(a), "lib"),
		p.BinDir(a),
		p.DocDir(a),
		p.StublibsDir(a),
	}
}

// GlobalDirs lists every directory `init` must create under a fresh root.
func (p Paths) GlobalDirs() []string {
	return []string{
		filepath.Join(p.Root, "repo"),
		p.GlobalOpamDir(),
		p.GlobalDescrDir(),
		p.GlobalArchiveDir(),
		p.GlobalCompilerDir(),
	}
}

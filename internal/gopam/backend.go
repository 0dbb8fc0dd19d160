package gopam

import (
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"
)

// Backend is the repository collaborator: one implementation per
// RepoKind, sharing the init/update/download/upload contract. Its callers
// are the synchronizer, the executor's fetch step, switch initialization,
// `remote add` and `upload`.
type Backend interface {
	// Init prepares repo's local mirror (first-time clone/checkout).
	Init(repo Repository) error
	// Update refreshes repo's local mirror and records the NVs that
	// changed into the mirror's "updated" file.
	Update(repo Repository) error
	// Download fetches nv's archive into the mirror's archives/ dir.
	Download(repo Repository, nv NV) error
	// Upload publishes a locally-built package into repo.
	Upload(repo Repository, opamFile, descrFile, archiveFile string, nv NV) error
}

// NewBackend dispatches to the implementation matching kind: one concrete
// type per RepoKind behind this single interface.
func NewBackend(kind RepoKind, p Paths) (Backend, error) {
	switch kind {
	case RepoKindGit:
		return &gitBackend{paths: p}, nil
	case RepoKindLocal:
		return &localBackend{paths: p}, nil
	case RepoKindHTTP:
		return &httpBackend{paths: p}, nil
	default:
		return nil, errors.Errorf("unknown repository kind %q", kind)
	}
}

// gitBackend mirrors a repository over git, using Masterminds/vcs for
// clone/pull against the remote.
type gitBackend struct{ paths Paths }

// mirrorDir is the git working tree's checkout location. It is the same
// directory relinkAll/ownsPackage scan via Paths.RepoPackageDir, so a
// cloned repo's packages/<nv>/ layout is visible to the synchronizer
// without a second mirror-to-mirror copy.
func (b *gitBackend) mirrorDir(repo Repository) string {
	return b.paths.RepoDir(repo.Name)
}

func (b *gitBackend) Init(repo Repository) error {
	dir := b.mirrorDir(repo)
	if ok, _ := isDir(dir); ok {
		return nil
	}
	r, err := vcs.NewGitRepo(string(repo.Address), dir)
	if err != nil {
		return errors.Wrapf(err, "preparing git repo %s", repo.Name)
	}
	if err := r.Get(); err != nil {
		return errors.Wrapf(err, "cloning %s", repo.Address)
	}
	return nil
}

func (b *gitBackend) Update(repo Repository) error {
	dir := b.mirrorDir(repo)
	if ok, _ := isDir(dir); !ok {
		if err := b.Init(repo); err != nil {
			return err
		}
	}
	r, err := vcs.NewGitRepo(string(repo.Address), dir)
	if err != nil {
		return err
	}
	if err := r.Update(); err != nil {
		return errors.Wrapf(err, "updating %s", repo.Name)
	}
	// A faithful implementation would diff the working tree's
	// packages/ listing against the previous HEAD to populate
	// "updated". Without a CUDF-grade metadata index to diff against,
	// gopam conservatively treats every package present in the mirror
	// after a pull as updated, and the synchronizer adds each of them to
	// every switch's Reinstall set (see sync.go).
	return writeUpdatedFromMirrorPackages(b.paths, repo, dir)
}

func (b *gitBackend) Download(repo Repository, nv NV) error {
	src := filepath.Join(b.mirrorDir(repo), "packages", nv.String(), "files", nv.String()+".tar.gz")
	dst := b.paths.RepoArchiveFile(repo.Name, nv)
	return copyIfExists(src, dst)
}

func (b *gitBackend) Upload(repo Repository, opamFile, descrFile, archiveFile string, nv NV) error {
	dir := filepath.Join(b.mirrorDir(repo), "packages", nv.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := copyFile(opamFile, filepath.Join(dir, "opam")); err != nil {
		return err
	}
	if descrFile != "" {
		if err := copyFile(descrFile, filepath.Join(dir, "descr")); err != nil {
			return err
		}
	}
	return copyFile(archiveFile, filepath.Join(dir, "files", nv.String()+".tar.gz"))
}

// localBackend treats RepoAddress as a filesystem path.
type localBackend struct{ paths Paths }

func (b *localBackend) Init(repo Repository) error {
	ok, err := isDir(string(repo.Address))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("local repository address %q is not a directory", repo.Address)
	}
	return nil
}

func (b *localBackend) Update(repo Repository) error {
	return writeUpdatedFromMirrorPackages(b.paths, repo, string(repo.Address))
}

func (b *localBackend) Download(repo Repository, nv NV) error {
	src := filepath.Join(string(repo.Address), "packages", nv.String(), "files", nv.String()+".tar.gz")
	dst := b.paths.RepoArchiveFile(repo.Name, nv)
	return copyIfExists(src, dst)
}

func (b *localBackend) Upload(repo Repository, opamFile, descrFile, archiveFile string, nv NV) error {
	dir := filepath.Join(string(repo.Address), "packages", nv.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := copyFile(opamFile, filepath.Join(dir, "opam")); err != nil {
		return err
	}
	if descrFile != "" {
		if err := copyFile(descrFile, filepath.Join(dir, "descr")); err != nil {
			return err
		}
	}
	return copyFile(archiveFile, filepath.Join(dir, "files", nv.String()+".tar.gz"))
}

// httpBackend is a thin, read-mostly implementation: it can pull a tarball
// index over HTTP, but publishing (Upload) is out of scope for a static
// HTTP endpoint.
type httpBackend struct{ paths Paths }

func (b *httpBackend) Init(repo Repository) error { return b.Update(repo) }

func (b *httpBackend) Update(repo Repository) error {
	resp, err := http.Get(string(repo.Address) + "/index")
	if err != nil {
		return errors.Wrapf(err, "fetching index from %s", repo.Address)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching index from %s: HTTP %d", repo.Address, resp.StatusCode)
	}
	dir := b.paths.RepoDir(repo.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	idx, err := os.Create(filepath.Join(dir, "index"))
	if err != nil {
		return err
	}
	defer idx.Close()
	if _, err := io.Copy(idx, resp.Body); err != nil {
		return err
	}
	return writeUpdatedFromMirrorPackages(b.paths, repo, dir)
}

func (b *httpBackend) Download(repo Repository, nv NV) error {
	resp, err := http.Get(string(repo.Address) + "/archives/" + nv.String() + ".tar.gz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("downloading %s: HTTP %d", nv, resp.StatusCode)
	}
	dst := b.paths.RepoArchiveFile(repo.Name, nv)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func (b *httpBackend) Upload(repo Repository, opamFile, descrFile, archiveFile string, nv NV) error {
	return errors.New("http backend does not support upload")
}

// writeUpdatedFromMirrorPackages lists the NVs present under mirrorDir's
// packages/ subdirectory and records them as this pull's "updated" set.
func writeUpdatedFromMirrorPackages(p Paths, repo Repository, mirrorDir string) error {
	entries, err := ioutil.ReadDir(filepath.Join(mirrorDir, "packages"))
	if err != nil {
		if os.IsNotExist(err) {
			return writeNVSet(p.RepoUpdatedFile(repo.Name), NVSet{})
		}
		return err
	}
	set := NVSet{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if nv, err := ParseNV(e.Name()); err == nil {
			set.Add(nv)
		}
	}
	return writeNVSet(p.RepoUpdatedFile(repo.Name), set)
}

func copyIfExists(src, dst string) error {
	if ok, _ := isRegular(src); !ok {
		return errors.Errorf("archive %s not found in repository mirror", src)
	}
	return copyFile(src, dst)
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reg-go/internal/config"
	"reg-go/internal/database"
	"reg-go/internal/registry"
)

// SnapshotResult reports what happened to one instance during dump or load.
type SnapshotResult struct {
	Instance string
	Version  int64
	Skipped  bool
}

// keyedEncryptor is implemented by encryptors whose key pair lives in files
// that have to travel with the snapshots.
type keyedEncryptor interface {
	KeyPaths() (public, private string)
}

// NewRegAppForLoad opens the stores without comparing them against the vault,
// so that a newer snapshot can be loaded over them.
func NewRegAppForLoad(ctx context.Context, cfg *config.Config) (*RegApp, error) {
	return open(ctx, cfg, "load", modeLoad)
}

type instanceDB struct {
	name string
	db   *database.SQLiteDatabase
}

// databases lists the local store followed by the mounted ones.
func (a *RegApp) databases() []instanceDB {
	out := []instanceDB{{a.cfg.InstanceID, a.local}}
	for _, m := range a.cfg.Mounts {
		out = append(out, instanceDB{m.Instance, a.mounted[m.Instance]})
	}
	return out
}

// Dump writes an encrypted snapshot of every store to the vault. Each
// snapshot is stored with the store's current maximum resource version.
func (a *RegApp) Dump(ctx context.Context) ([]SnapshotResult, error) {
	if a.vault == nil {
		return nil, fmt.Errorf("no vault configured")
	}
	if !a.encryptor.IsConfigured() {
		return nil, fmt.Errorf("encryption keys are not set up: run `reg config init`")
	}

	var results []SnapshotResult
	for _, inst := range a.databases() {
		version, err := a.dumpInstance(ctx, inst)
		if err != nil {
			return results, fmt.Errorf("dumping %s: %w", inst.name, err)
		}
		results = append(results, SnapshotResult{Instance: inst.name, Version: version})
	}

	if err := a.uploadKeys(ctx, results[0].Version); err != nil {
		return results, err
	}
	return results, nil
}

func (a *RegApp) dumpInstance(ctx context.Context, inst instanceDB) (int64, error) {
	tmpDir, err := os.MkdirTemp("", "reg-dump-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	version, err := inst.db.MaxVersion(ctx)
	if err != nil {
		return 0, err
	}

	plain := filepath.Join(tmpDir, "snapshot.db")
	if err := inst.db.BackupTo(plain); err != nil {
		return 0, err
	}
	sealed := plain + ".age"
	if err := a.encryptFile(plain, sealed); err != nil {
		return 0, err
	}
	if err := a.uploadFile(ctx, inst.name, registry.SnapshotDB, sealed, version); err != nil {
		return 0, err
	}
	a.logger.Info("snapshot uploaded", "instance", inst.name, "version", version)
	return version, nil
}

func (a *RegApp) encryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := a.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return out.Close()
}

func (a *RegApp) uploadFile(ctx context.Context, instance, name, path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for upload: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if err := a.vault.Put(ctx, instance, name, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading %s to vault: %w", name, err)
	}
	return nil
}

// uploadKeys stores the key pair next to the local snapshot. The private key
// file is itself protected by the passphrase.
func (a *RegApp) uploadKeys(ctx context.Context, version int64) error {
	keyed, ok := a.encryptor.(keyedEncryptor)
	if !ok {
		return nil
	}
	public, private := keyed.KeyPaths()
	if err := a.uploadFile(ctx, a.cfg.InstanceID, registry.SnapshotPublicKey, public, version); err != nil {
		return err
	}
	return a.uploadFile(ctx, a.cfg.InstanceID, registry.SnapshotPrivateKey, private, version)
}

// downloadKeys fetches the key pair from the vault when it is missing locally.
func (a *RegApp) downloadKeys(ctx context.Context) error {
	keyed, ok := a.encryptor.(keyedEncryptor)
	if !ok {
		return nil
	}
	public, private := keyed.KeyPaths()
	for name, path := range map[string]string{
		registry.SnapshotPublicKey:  public,
		registry.SnapshotPrivateKey: private,
	} {
		if err := a.downloadFile(ctx, a.cfg.InstanceID, name, path); err != nil {
			return err
		}
	}
	a.logger.Info("encryption keys restored from vault")
	return nil
}

func (a *RegApp) downloadFile(ctx context.Context, instance, name, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := a.vault.Get(ctx, instance, name, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("downloading %s: %w", name, err)
	}
	return f.Close()
}

// Load replaces every store with its snapshot from the vault. A store whose
// snapshot is older than the local copy is refused unless force is set; one
// that is already current is skipped.
func (a *RegApp) Load(ctx context.Context, passphrase string, force bool) ([]SnapshotResult, error) {
	if a.vault == nil {
		return nil, fmt.Errorf("no vault configured")
	}
	if !a.encryptor.IsConfigured() {
		if err := a.downloadKeys(ctx); err != nil {
			return nil, err
		}
	}
	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}

	var results []SnapshotResult
	for _, inst := range a.databases() {
		remote, err := a.vault.Version(ctx, inst.name, registry.SnapshotDB)
		if err != nil {
			return results, fmt.Errorf("reading snapshot version of %s: %w", inst.name, err)
		}
		local, err := inst.db.MaxVersion(ctx)
		if err != nil {
			return results, err
		}

		switch {
		case remote == 0, remote == local && !force:
			a.logger.Info("snapshot skipped", "instance", inst.name, "local", local, "remote", remote)
			results = append(results, SnapshotResult{Instance: inst.name, Version: local, Skipped: true})
			continue
		case remote < local && !force:
			return results, fmt.Errorf("snapshot of %s is older than the local database (local=%d, remote=%d): use --force to load it anyway", inst.name, local, remote)
		}

		if err := a.loadInstance(ctx, inst, dc); err != nil {
			return results, fmt.Errorf("loading %s: %w", inst.name, err)
		}
		a.logger.Info("snapshot loaded", "instance", inst.name, "version", remote)
		results = append(results, SnapshotResult{Instance: inst.name, Version: remote})
	}

	if err := a.buildService(); err != nil {
		return results, err
	}
	return results, nil
}

func (a *RegApp) loadInstance(ctx context.Context, inst instanceDB, dc registry.DecryptionContext) error {
	dbPath := inst.db.Path()
	if dbPath == "" || dbPath == ":memory:" {
		return fmt.Errorf("cannot load a snapshot into an in-memory database")
	}

	tmpDir, err := os.MkdirTemp("", "reg-load-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	sealed := filepath.Join(tmpDir, "snapshot.db.age")
	if err := a.downloadFile(ctx, inst.name, registry.SnapshotDB, sealed); err != nil {
		return err
	}

	// Decrypt next to the database so the final rename stays on one filesystem.
	staged := filepath.Join(filepath.Dir(dbPath), "."+filepath.Base(dbPath)+".loading")
	if err := decryptFile(dc, sealed, staged); err != nil {
		os.Remove(staged)
		return err
	}

	if err := inst.db.Close(); err != nil {
		os.Remove(staged)
		return fmt.Errorf("closing database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", dbPath+suffix, err)
		}
	}
	if err := os.Rename(staged, dbPath); err != nil {
		return fmt.Errorf("replacing database: %w", err)
	}

	db, err := database.NewSQLiteDatabase(dbPath, a.storeOptions(inst.name))
	if err != nil {
		return fmt.Errorf("reopening database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return fmt.Errorf("loaded snapshot has an unexpected schema: %w", err)
	}

	if inst.name == a.cfg.InstanceID {
		a.local = db
	} else {
		a.mounted[inst.name] = db
	}
	return nil
}

func decryptFile(dc registry.DecryptionContext, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	if err := dc.Decrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return out.Close()
}

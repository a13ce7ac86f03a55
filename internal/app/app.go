package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"reg-go/internal/config"
	"reg-go/internal/database"
	"reg-go/internal/encryption"
	"reg-go/internal/fs"
	"reg-go/internal/mount"
	"reg-go/internal/registry"
	"reg-go/internal/vault"
)

// RegApp is the application layer between the CLI and RegistryService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw registry paths, and manages the database lifecycle on Close.
type RegApp struct {
	cfg       *config.Config
	opts      database.Options
	local     *database.SQLiteDatabase
	mounted   map[string]*database.SQLiteDatabase
	mounts    *mount.Table
	fsmgr     registry.FilesystemManager
	vault     registry.Vault // nil when no vault is configured
	encryptor registry.Encryptor
	service   *registry.RegistryService
	sess      registry.Session
	op        *Operation
	logger    registry.Logger
	logCloser io.Closer
}

// openMode selects how NewRegApp treats the database schema and the vault.
type openMode int

const (
	// modeDefault requires up-to-date schemas and refuses to open a store
	// whose vault snapshot is newer than the local copy.
	modeDefault openMode = iota
	// modeInit migrates schemas and creates the root collections.
	modeInit
	// modeLoad skips the vault version check so a snapshot can be loaded.
	modeLoad
)

// NewRegApp creates a fully wired RegApp from the given config.
// operation identifies the CLI command being run (e.g. "put", "mv").
// The caller must call Close when done.
func NewRegApp(ctx context.Context, cfg *config.Config, operation string) (*RegApp, error) {
	return open(ctx, cfg, operation, modeDefault)
}

// InitRegistry creates or migrates every configured store and makes sure the
// root collections and mount points exist.
func InitRegistry(ctx context.Context, cfg *config.Config) error {
	a, err := open(ctx, cfg, "init", modeInit)
	if err != nil {
		return err
	}
	err = a.service.EnsureRoot(ctx, a.sess)
	return a.Close(a.op.Finish(err))
}

func open(ctx context.Context, cfg *config.Config, operation string, mode openMode) (*RegApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := NewOperation(operation, time.Now())
	slogger, logCloser, err := newLogger(cfg.Log, cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := registry.Logger(&slogAdapter{l: slogger})

	a := &RegApp{
		cfg:       cfg,
		mounted:   make(map[string]*database.SQLiteDatabase),
		fsmgr:     fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		sess:      registry.NewSession(cfg.Registry.TenantID, cfg.Registry.User),
		op:        op,
		logger:    logger,
		logCloser: logCloser,
		opts: database.Options{
			Logger: logger,
			Flags: registry.NewMutableFlags(
				cfg.Registry.VersionedProperties,
				cfg.Registry.Pagination,
				cfg.Registry.RetainHistory,
			),
			Authorizer: registry.NewPrefixAuthorizer(cfg.Registry.DeniedPaths),
		},
	}

	if err := a.openStores(ctx, mode); err != nil {
		a.closeStores()
		logCloser.Close()
		return nil, err
	}
	logger.Debug("app ready", "operation", operation, "instance", cfg.InstanceID, "mounts", a.mounts.Len())
	return a, nil
}

func (a *RegApp) openStores(ctx context.Context, mode openMode) error {
	cfg := a.cfg

	if len(cfg.Vaults) > 0 {
		v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return fmt.Errorf("creating vault: %w", err)
		}
		a.vault = v
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	a.encryptor = enc

	specs := make([]mount.Mount, 0, len(cfg.Mounts))
	for _, m := range cfg.Mounts {
		specs = append(specs, mount.Mount{Path: m.Path, TargetPath: m.TargetPath, Instance: m.Instance})
	}
	mounts, err := mount.NewTable(specs)
	if err != nil {
		return fmt.Errorf("building mount table: %w", err)
	}
	a.mounts = mounts

	for _, inst := range a.instances() {
		db, err := a.openDatabase(ctx, inst, mode)
		if err != nil {
			return err
		}
		if inst.Instance == cfg.InstanceID {
			a.local = db
			continue
		}
		a.mounted[inst.Instance] = db
	}
	return a.buildService()
}

// instances lists the local instance followed by every mount. Mounts without
// their own database config share the local one.
func (a *RegApp) instances() []config.MountConfig {
	out := []config.MountConfig{{Instance: a.cfg.InstanceID, Database: a.cfg.Database}}
	for _, m := range a.cfg.Mounts {
		if m.Database.Type == "" {
			m.Database = a.cfg.Database
		}
		out = append(out, m)
	}
	return out
}

// storeOptions returns the database options for instance. A mounted store
// sees its own paths, so its authorizer maps them back through the mount.
func (a *RegApp) storeOptions(instance string) database.Options {
	opts := a.opts
	opts.Logger = registry.WithFields(a.logger, "instance", instance)
	for _, m := range a.mounts.Mounts() {
		if m.Instance == instance {
			opts.Authorizer = registry.NewMountAuthorizer(a.opts.Authorizer, a.mounts, m)
			break
		}
	}
	return opts
}

func (a *RegApp) openDatabase(ctx context.Context, inst config.MountConfig, mode openMode) (*database.SQLiteDatabase, error) {
	db, err := database.NewDatabaseFromConfig(inst.Database, inst.Instance, a.storeOptions(inst.Instance))
	if err != nil {
		return nil, fmt.Errorf("opening database for %s: %w", inst.Instance, err)
	}

	if mode == modeInit {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database for %s: %w", inst.Instance, err)
		}
	} else if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema for %s out of date (run `reg init`): %w", inst.Instance, err)
	}

	if mode == modeDefault && a.vault != nil {
		if err := a.checkRemoteVersion(ctx, inst.Instance, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// checkRemoteVersion refuses to work on a store whose vault snapshot is newer
// than the local copy.
func (a *RegApp) checkRemoteVersion(ctx context.Context, instance string, db *database.SQLiteDatabase) error {
	remote, err := a.vault.Version(ctx, instance, registry.SnapshotDB)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version of %s: %w", instance, err)
	}
	local, err := db.MaxVersion(ctx)
	if err != nil {
		return fmt.Errorf("checking local version of %s: %w", instance, err)
	}
	if remote > local {
		return fmt.Errorf("local database %s is behind its snapshot (local=%d, remote=%d): run `reg load` or re-initialize", instance, local, remote)
	}
	return nil
}

func (a *RegApp) buildService() error {
	backends := make(map[string]registry.Database, len(a.mounted))
	for name, db := range a.mounted {
		backends[name] = db
	}
	svc, err := registry.NewRegistryService(a.local, backends, a.mounts, a.fsmgr,
		a.opts.Flags, a.opts.Authorizer, a.logger, registry.RealClock{})
	if err != nil {
		return fmt.Errorf("creating registry service: %w", err)
	}
	a.service = svc
	return nil
}

// Operation returns the operation tracked by this app.
func (a *RegApp) Operation() *Operation {
	return a.op
}

// Get returns the resource at path.
func (a *RegApp) Get(ctx context.Context, path string) (*registry.Resource, error) {
	return a.service.Get(ctx, a.sess, path)
}

// List returns the collection at path with a window of its children.
func (a *RegApp) List(ctx context.Context, path string, start, pageLen int) (*registry.Resource, error) {
	return a.service.GetCollection(ctx, a.sess, path, start, pageLen)
}

// Put stores content at path, creating or updating the resource.
func (a *RegApp) Put(ctx context.Context, path string, content []byte, mediaType, description string, props map[string][]string) (*registry.Resource, error) {
	res := registry.NewResource()
	res.Content = content
	res.MediaType = mediaType
	res.Description = description
	for name, values := range props {
		res.Properties.Set(name, values...)
	}
	if err := a.service.Put(ctx, a.sess, path, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Mkdir creates a collection at path.
func (a *RegApp) Mkdir(ctx context.Context, path string) (*registry.Resource, error) {
	res := registry.NewCollection()
	if err := a.service.Put(ctx, a.sess, path, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *RegApp) Delete(ctx context.Context, path string) error {
	return a.service.Delete(ctx, a.sess, path)
}

func (a *RegApp) Move(ctx context.Context, src, dst string) error {
	return a.service.Move(ctx, a.sess, src, dst)
}

func (a *RegApp) Copy(ctx context.Context, src, dst string) error {
	return a.service.Copy(ctx, a.sess, src, dst)
}

func (a *RegApp) Versions(ctx context.Context, path string) ([]int64, error) {
	return a.service.Versions(ctx, a.sess, path)
}

func (a *RegApp) GetVersion(ctx context.Context, path string, version int64) (*registry.Resource, error) {
	return a.service.GetVersion(ctx, a.sess, path, version)
}

func (a *RegApp) RestoreVersion(ctx context.Context, path string, version int64) (*registry.Resource, error) {
	return a.service.RestoreVersion(ctx, a.sess, path, version)
}

func (a *RegApp) AddAssociation(ctx context.Context, source, target, assocType string) error {
	return a.service.AddAssociation(ctx, a.sess, source, target, assocType)
}

func (a *RegApp) RemoveAssociation(ctx context.Context, source, target, assocType string) error {
	return a.service.RemoveAssociation(ctx, a.sess, source, target, assocType)
}

// Associations lists the associations of path, restricted to assocType when set.
func (a *RegApp) Associations(ctx context.Context, path, assocType string) ([]registry.Association, error) {
	if assocType == "" {
		return a.service.Associations(ctx, a.sess, path)
	}
	return a.service.AssociationsOfType(ctx, a.sess, path, assocType)
}

// Logs returns one page of audit entries and the total number of matches.
func (a *RegApp) Logs(ctx context.Context, filter registry.LogFilter, start, count int) ([]registry.LogEntry, int, error) {
	page := registry.NewPaginationContext(start, count)
	entries, err := a.service.LogsPage(ctx, a.sess, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return entries, page.Length(), nil
}

// Comment records a free-text comment on path in the audit log.
func (a *RegApp) Comment(ctx context.Context, path, text string) error {
	return a.service.AppendLogs(ctx, a.sess, []registry.LogEntry{{
		Path:       path,
		Action:     registry.ActionComment,
		ActionData: text,
	}})
}

func (a *RegApp) Import(ctx context.Context, localPath, regPath string) (int, error) {
	return a.service.Import(ctx, a.sess, localPath, regPath)
}

func (a *RegApp) Export(ctx context.Context, regPath, localDir string) (int, error) {
	return a.service.Export(ctx, a.sess, regPath, localDir)
}

func (a *RegApp) closeStores() error {
	var firstErr error
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	for name, db := range a.mounted {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing database %s: %w", name, err)
		}
	}
	return firstErr
}

// Close records the command's outcome, closes every database and the log.
// cmdErr is the error the command finished with, if any.
func (a *RegApp) Close(cmdErr error) error {
	a.op.Finish(cmdErr)
	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", a.op.Duration(time.Now()).Truncate(time.Millisecond))

	firstErr := cmdErr
	if err := a.closeStores(); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return firstErr
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"reg-go/internal/app"
	"reg-go/internal/config"
	"reg-go/internal/encryption"
	"reg-go/internal/registry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// withApp opens a RegApp for operation, runs fn and closes the app with fn's
// result so that the outcome is logged.
func withApp(cmd *cobra.Command, operation string, fn func(ctx context.Context, a *app.RegApp) error) error {
	cfg, _, err := readConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := app.NewRegApp(ctx, cfg, operation)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	return a.Close(fn(ctx, a))
}

// readPassphrase prompts on the terminal without echo. When stdin is not a
// terminal the first line of stdin is used.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func parseProperties(raw []string) (map[string][]string, error) {
	props := make(map[string][]string)
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("property %q: expected NAME=VALUE", kv)
		}
		props[name] = append(props[name], value)
	}
	return props, nil
}

func printMeta(w io.Writer, r *registry.Resource) {
	kind := "resource"
	if r.IsCollection() {
		kind = "collection"
	}
	fmt.Fprintf(w, "Path:          %s\n", r.Path)
	fmt.Fprintf(w, "Kind:          %s\n", kind)
	fmt.Fprintf(w, "Version:       %d\n", r.Version)
	fmt.Fprintf(w, "UUID:          %s\n", r.UUID)
	if r.MediaType != "" {
		fmt.Fprintf(w, "Media type:    %s\n", r.MediaType)
	}
	if r.Description != "" {
		fmt.Fprintf(w, "Description:   %s\n", r.Description)
	}
	fmt.Fprintf(w, "Author:        %s (%s)\n", r.Author, r.CreatedAt.Format(time.DateTime))
	fmt.Fprintf(w, "Last updater:  %s (%s)\n", r.LastUpdater, r.LastModified.Format(time.DateTime))
	for _, name := range r.Properties.SortedNames() {
		fmt.Fprintf(w, "  %s = %s\n", name, strings.Join(r.Properties.Get(name), ", "))
	}
}

var rootCmd = &cobra.Command{
	Use:          "reg",
	Short:        "Versioned resource registry",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		noKeys, _ := cmd.Flags().GetBool("no-keys")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		instanceID := uuid.New().String()
		cfg := config.NewConfig(instanceID, defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Instance ID: %s\n", instanceID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])

		if noKeys {
			return nil
		}
		passphrase, err := readPassphrase("Passphrase for the snapshot key: ")
		if err != nil {
			return err
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			again, err := readPassphrase("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if again != passphrase {
				return fmt.Errorf("passphrases do not match")
			}
		}
		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return err
		}
		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("setting up encryption keys: %w", err)
		}
		fmt.Printf("Keys written to %s\n", cfg.Encryption.PublicKeyPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Instance ID: %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		for _, m := range cfg.Mounts {
			fmt.Printf("Mount:       %s -> %s:%s\n", m.Path, m.Instance, m.TargetPath)
		}
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:       %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the databases and root collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		if err := app.InitRegistry(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Println("Registry initialized.")
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put PATH [FILE]",
	Short: "Store a resource, reading content from FILE or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mediaType, _ := cmd.Flags().GetString("media-type")
		description, _ := cmd.Flags().GetString("description")
		rawProps, _ := cmd.Flags().GetStringArray("property")

		props, err := parseProperties(rawProps)
		if err != nil {
			return err
		}

		var content []byte
		if len(args) == 2 && args[1] != "-" {
			content, err = os.ReadFile(args[1])
		} else {
			content, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading content: %w", err)
		}

		return withApp(cmd, "put", func(ctx context.Context, a *app.RegApp) error {
			res, err := a.Put(ctx, args[0], content, mediaType, description, props)
			if err != nil {
				return err
			}
			fmt.Printf("%s version %d\n", res.Path, res.Version)
			return nil
		})
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "mkdir", func(ctx context.Context, a *app.RegApp) error {
			_, err := a.Mkdir(ctx, args[0])
			return err
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get PATH",
	Short: "Print a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetInt64("version")
		meta, _ := cmd.Flags().GetBool("meta")

		return withApp(cmd, "get", func(ctx context.Context, a *app.RegApp) error {
			var (
				res *registry.Resource
				err error
			)
			if version > 0 {
				res, err = a.GetVersion(ctx, args[0], version)
			} else {
				res, err = a.Get(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if meta {
				printMeta(os.Stdout, res)
				return nil
			}
			if res.IsCollection() {
				for _, child := range res.Children {
					fmt.Println(child)
				}
				return nil
			}
			_, err = os.Stdout.Write(res.Content)
			return err
		})
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the children of a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetInt("start")
		limit, _ := cmd.Flags().GetInt("limit")

		target := "/"
		if len(args) > 0 {
			target = args[0]
		}
		return withApp(cmd, "ls", func(ctx context.Context, a *app.RegApp) error {
			res, err := a.List(ctx, target, start, limit)
			if err != nil {
				return err
			}
			if !res.IsCollection() {
				fmt.Println(res.Path)
				return nil
			}
			for _, child := range res.Children {
				fmt.Println(child)
			}
			if res.ChildCount > len(res.Children) {
				fmt.Fprintf(os.Stderr, "(%d of %d)\n", len(res.Children), res.ChildCount)
			}
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Delete a resource or collection tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "rm", func(ctx context.Context, a *app.RegApp) error {
			return a.Delete(ctx, args[0])
		})
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv SRC DST",
	Short: "Move a resource or collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "mv", func(ctx context.Context, a *app.RegApp) error {
			return a.Move(ctx, args[0], args[1])
		})
	},
}

var cpCmd = &cobra.Command{
	Use:   "cp SRC DST",
	Short: "Copy a resource or collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "cp", func(ctx context.Context, a *app.RegApp) error {
			return a.Copy(ctx, args[0], args[1])
		})
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions PATH",
	Short: "List the versions of a resource, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "versions", func(ctx context.Context, a *app.RegApp) error {
			versions, err := a.Versions(ctx, args[0])
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Println(v)
			}
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore-version PATH VERSION",
	Short: "Make an archived version current again",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return withApp(cmd, "restore-version", func(ctx context.Context, a *app.RegApp) error {
			res, err := a.RestoreVersion(ctx, args[0], version)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %s as version %d\n", res.Path, res.Version)
			return nil
		})
	},
}

// assoc command
var assocCmd = &cobra.Command{
	Use:   "assoc",
	Short: "Manage associations",
}

var assocAddCmd = &cobra.Command{
	Use:   "add SRC TARGET TYPE",
	Short: "Associate SRC with TARGET",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "assoc-add", func(ctx context.Context, a *app.RegApp) error {
			return a.AddAssociation(ctx, args[0], args[1], args[2])
		})
	},
}

var assocRmCmd = &cobra.Command{
	Use:   "rm SRC TARGET TYPE",
	Short: "Remove an association",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "assoc-rm", func(ctx context.Context, a *app.RegApp) error {
			return a.RemoveAssociation(ctx, args[0], args[1], args[2])
		})
	},
}

var assocLsCmd = &cobra.Command{
	Use:   "ls PATH",
	Short: "List associations touching PATH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assocType, _ := cmd.Flags().GetString("type")
		return withApp(cmd, "assoc-ls", func(ctx context.Context, a *app.RegApp) error {
			assocs, err := a.Associations(ctx, args[0], assocType)
			if err != nil {
				return err
			}
			for _, as := range assocs {
				fmt.Printf("%s  -[%s]->  %s\n", as.Source, as.Type, as.Target)
			}
			return nil
		})
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log [PATH]",
	Short: "View the audit log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetInt("start")
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user")
		action, _ := cmd.Flags().GetString("action")
		asc, _ := cmd.Flags().GetBool("reverse")

		filter := registry.NewLogFilter()
		filter.User = user
		filter.Descending = !asc
		if len(args) > 0 {
			filter.Path = args[0]
		}
		if action != "" {
			code, err := registry.ParseAction(action)
			if err != nil {
				return err
			}
			filter.Action = code
		}

		return withApp(cmd, "log", func(ctx context.Context, a *app.RegApp) error {
			entries, total, err := a.Logs(ctx, filter, start, limit)
			if err != nil {
				return err
			}
			if total == 0 {
				fmt.Println("No log entries.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-18s  %-10s  %s",
					e.Date.Local().Format(time.DateTime),
					registry.ActionName(e.Action),
					e.User,
					e.Path,
				)
				if e.ActionData != "" {
					fmt.Printf("  %s", e.ActionData)
				}
				fmt.Println()
			}
			if total > len(entries) {
				fmt.Fprintf(os.Stderr, "(%d of %d)\n", len(entries), total)
			}
			return nil
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment PATH TEXT",
	Short: "Add a comment to the audit log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "comment", func(ctx context.Context, a *app.RegApp) error {
			return a.Comment(ctx, args[0], args[1])
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import LOCAL PATH",
	Short: "Import a local file or directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "import", func(ctx context.Context, a *app.RegApp) error {
			n, err := a.Import(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d item(s)\n", n)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export PATH LOCAL",
	Short: "Export a resource or collection tree to a local directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "export", func(ctx context.Context, a *app.RegApp) error {
			n, err := a.Export(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d item(s)\n", n)
			return nil
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Upload encrypted snapshots of every store to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "dump", func(ctx context.Context, a *app.RegApp) error {
			results, err := a.Dump(ctx)
			for _, r := range results {
				fmt.Printf("%s  version %d\n", r.Instance, r.Version)
			}
			return err
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the local stores with their vault snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := app.NewRegAppForLoad(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		results, err := a.Load(ctx, passphrase, force)
		for _, r := range results {
			state := "loaded"
			if r.Skipped {
				state = "up to date"
			}
			fmt.Printf("%s  version %d  %s\n", r.Instance, r.Version, state)
		}
		return a.Close(err)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().Bool("no-keys", false, "Skip generating the snapshot key pair")

	// assoc subcommands
	assocCmd.AddCommand(assocAddCmd)
	assocCmd.AddCommand(assocRmCmd)
	assocCmd.AddCommand(assocLsCmd)
	assocLsCmd.Flags().StringP("type", "t", "", "Only list associations of this type")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringP("media-type", "m", "", "Media type of the content")
	putCmd.Flags().StringP("description", "d", "", "Description")
	putCmd.Flags().StringArrayP("property", "p", nil, "Property as NAME=VALUE (repeatable)")
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Int64("version", 0, "Read an archived version")
	getCmd.Flags().Bool("meta", false, "Print metadata instead of content")
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().Int("start", 0, "Index of the first child")
	lsCmd.Flags().IntP("limit", "n", -1, "Maximum number of children (negative for all)")
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(assocCmd)
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().Int("start", 0, "Index of the first entry")
	logCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show")
	logCmd.Flags().StringP("user", "u", "", "Only show entries by this user")
	logCmd.Flags().StringP("action", "a", "", "Only show this action (e.g. update, delete, move)")
	logCmd.Flags().BoolP("reverse", "r", false, "Oldest first")
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().Bool("force", false, "Load snapshots even when older than the local stores")
}

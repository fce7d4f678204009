package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"drivebox/internal/app"
	"drivebox/internal/config"
	"drivebox/internal/drive"
	"drivebox/internal/encryption"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// userEmail selects the acting user for namespace commands.
var userEmail string

// newApp reads the config and creates a DriveApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.DriveApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewDriveApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// readPassword prompts for a password without echo when attached to a
// terminal, and falls back to reading a line otherwise (pipes, tests).
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var rootCmd = &cobra.Command{
	Use:   "drivebox",
	Short: "Multi-tenant virtual file storage",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Store:     %s\n", cfg.Store.Type)
		fmt.Printf("Blob:      %s\n", cfg.Blob.Type)
		fmt.Printf("Share TTL: %d days\n", cfg.Share.DefaultTTLDays)
		return nil
	},
}

var configKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the at-rest encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		e := encryption.NewAgeEncryptor(cfg.Encryption)
		if err := e.Setup(); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		fmt.Println("Set encryption type = \"age\" in the config to enable at-rest encryption.")
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add EMAIL",
	Short: "Register a user and create their root directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		a, err := newApp("SignUp")
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.SignUp(context.Background(), args[0], password)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Printf("User created: %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Verify credentials and initialize the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.Login(context.Background(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Login successful for %s\n", u.Email)
		return nil
	},
}

// mkdir command
var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, ok := drive.ParentOf(args[0])
		if !ok {
			return fmt.Errorf("cannot create the root directory")
		}
		name := drive.LeafName(args[0])

		a, err := newApp("MakeDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.MakeDirectory(context.Background(), userEmail, parent, name)
		if err != nil {
			return err
		}

		fmt.Printf("Created %s\n", dir.Path)
		return nil
	},
}

// rmdir command
var rmdirCmd = &cobra.Command{
	Use:   "rmdir PATH",
	Short: "Delete an empty directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.RemoveDirectory(context.Background(), userEmail, args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("No such directory: %s\n", args[0])
			return nil
		}

		fmt.Printf("Deleted %s\n", drive.Normalize(args[0]))
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := drive.Separator
		if len(args) > 0 {
			path = args[0]
		}

		a, err := newApp("ListDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		dirs, files, err := a.ListDirectory(context.Background(), userEmail, path)
		if err != nil {
			return err
		}

		sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

		for _, d := range dirs {
			fmt.Printf("d  %s/\n", d.Name)
		}
		for _, f := range files {
			dup := " "
			if f.IsDuplicate {
				dup = "D"
			}
			fmt.Printf("%s  %s\t%d\t%s\n", dup, f.Name, f.Size, f.ContentType)
		}
		return nil
	},
}

// put command
var putCmd = &cobra.Command{
	Use:   "put DIR LOCALFILE",
	Short: "Upload a file into a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		a, err := newApp("Upload")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.UploadFile(context.Background(), userEmail, args[0], args[1], overwrite)
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %s%s (%d bytes, %s)\n", f.Path, f.Name, f.Size, f.ContentHash[:12])
		return nil
	},
}

// get command
var getCmd = &cobra.Command{
	Use:   "get DIR NAME",
	Short: "Download a file to stdout or --output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("Download")
		if err != nil {
			return err
		}
		defer a.Close()

		out := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return a.DownloadFile(context.Background(), userEmail, args[0], args[1], out)
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm DIR NAME",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveFile")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.RemoveFile(context.Background(), userEmail, args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("No such file: %s in %s\n", args[1], args[0])
			return nil
		}

		fmt.Printf("Deleted %s\n", args[1])
		return nil
	},
}

// url command
var urlCmd = &cobra.Command{
	Use:   "url DIR NAME",
	Short: "Mint a time-boxed download URL for a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FileURL")
		if err != nil {
			return err
		}
		defer a.Close()

		url, err := a.FileURL(context.Background(), userEmail, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

// dups command
var dupsCmd = &cobra.Command{
	Use:   "dups [PATH]",
	Short: "Find duplicate content in a directory (or the whole account with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("Duplicates")
		if err != nil {
			return err
		}
		defer a.Close()

		if all {
			groups, err := a.DuplicatesAll(context.Background(), userEmail)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No duplicates found.")
				return nil
			}

			hashes := make([]string, 0, len(groups))
			for h := range groups {
				hashes = append(hashes, h)
			}
			sort.Strings(hashes)
			for _, h := range hashes {
				fmt.Printf("%s:\n", h[:12])
				for _, ref := range groups[h] {
					fmt.Printf("  %s%s\n", ref.Path, ref.Name)
				}
			}
			return nil
		}

		path := drive.Separator
		if len(args) > 0 {
			path = args[0]
		}
		groups, err := a.DuplicatesIn(context.Background(), userEmail, path)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}

		for _, g := range groups {
			fmt.Printf("%s:\n", g.Hash[:12])
			for _, f := range g.Files {
				fmt.Printf("  %s\n", f.Name)
			}
		}
		return nil
	},
}

// share commands
var shareCmd = &cobra.Command{
	Use:   "share DIR NAME RECIPIENT_EMAIL",
	Short: "Share a file with another user",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp("Share")
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.Share(context.Background(), userEmail, args[0], args[1], args[2], days)
		if err != nil {
			return err
		}

		fmt.Printf("Shared %s with %s until %s (grant %s)\n", g.FileName, args[2], g.ExpiresAt.Format("2006-01-02"), g.ID)
		return nil
	},
}

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Manage files shared with you",
}

var sharesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files shared with you",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SharedWithMe")
		if err != nil {
			return err
		}
		defer a.Close()

		shares, err := a.SharedWithMe(context.Background(), userEmail)
		if err != nil {
			return err
		}
		if len(shares) == 0 {
			fmt.Println("Nothing shared with you.")
			return nil
		}

		for _, s := range shares {
			note := ""
			if s.MissingInStorage {
				note = "\t(file no longer available)"
			}
			fmt.Printf("%s\t%s\tfrom %s\texpires %s%s\n",
				s.Grant.ID, s.Grant.FileName, s.Grant.OwnerEmail, s.Grant.ExpiresAt.Format("2006-01-02"), note)
		}
		return nil
	},
}

var sharesURLCmd = &cobra.Command{
	Use:   "url GRANT_ID",
	Short: "Mint a download URL for a shared file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShareURL")
		if err != nil {
			return err
		}
		defer a.Close()

		url, err := a.ShareURL(context.Background(), userEmail, args[0])
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

var sharesRevokeCmd = &cobra.Command{
	Use:   "revoke GRANT_ID",
	Short: "Remove a share addressed to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RevokeShare")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.RevokeShare(context.Background(), userEmail, args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("No such grant: %s\n", args[0])
			return nil
		}

		fmt.Println("Share revoked.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userEmail, "user", "u", "", "acting user's email")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeygenCmd)
	rootCmd.AddCommand(configCmd)

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(loginCmd)

	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmdirCmd)
	rootCmd.AddCommand(lsCmd)

	putCmd.Flags().Bool("overwrite", false, "replace an existing file with the same name")
	rootCmd.AddCommand(putCmd)
	getCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(urlCmd)

	dupsCmd.Flags().Bool("all", false, "search the whole account instead of one directory")
	rootCmd.AddCommand(dupsCmd)

	shareCmd.Flags().Int("days", 0, "share lifetime in days (default from config)")
	rootCmd.AddCommand(shareCmd)

	sharesCmd.AddCommand(sharesListCmd)
	sharesCmd.AddCommand(sharesURLCmd)
	sharesCmd.AddCommand(sharesRevokeCmd)
	rootCmd.AddCommand(sharesCmd)
}

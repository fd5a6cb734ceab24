package main

import (
	"encoding/json"
	"fmt"
	"os"

	"shakefetch/internal/app"
	"shakefetch/internal/config"
	"shakefetch/internal/eew"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("resolving default paths: %w", err)
	}

	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// The --time-field flag, where present, overrides the configured value.
	if cmd.Flags().Lookup("time-field") != nil {
		if tf, _ := cmd.Flags().GetString("time-field"); tf != "" {
			cfg.TimeField = tf
		}
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "shakefetch",
	Short: "Read seismic accelerometer records from the public dataset",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init COUNTRY_CODE",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve default paths: %w", err)
		}

		// Create config with defaults for the chosen country
		cfg := config.NewConfig(args[0], paths.BaseDir)

		// Initialize config file
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Country: %s\n", cfg.CountryCode)
		fmt.Printf("Bucket:  %s (%s)\n", cfg.Store.Bucket, cfg.Store.Region)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve default paths: %w", err)
		}

		// Read config
		cfg, err := config.Load(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Country:     %s\n", cfg.CountryCode)
		fmt.Printf("Time field:  %s\n", cfg.TimeField)
		fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Log level:   %s\n", cfg.LogLevel)
		if cfg.MetricsAddr != "" {
			fmt.Printf("Metrics:     %s\n", cfg.MetricsAddr)
		}
		fmt.Printf("Store:       %s %s (%s)\n", cfg.Store.Type, cfg.Store.Bucket, cfg.Store.Region)
		return nil
	},
}

// records command
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Fetch records for a date range",
	Long: `Fetch accelerometer records whose reference time falls within the
given UTC date range, printed as one JSON object per line. Dates use the
literal format "2006-01-02 15:04:05".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		devices, _ := cmd.Flags().GetStringSlice("device")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Records(cmd.Context(), start, end, devices)
		if err != nil {
			return fmt.Errorf("fetching records: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encoding record: %w", err)
			}
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Resolve candidate object keys without downloading",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		devices, _ := cmd.Flags().GetStringSlice("device")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		resolved, err := a.ResolveKeys(cmd.Context(), start, end, devices)
		if err != nil {
			return fmt.Errorf("resolving keys: %w", err)
		}

		for _, k := range resolved {
			fmt.Println(k)
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export OUTPUT",
	Short: "Export records as a sorted sample table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		devices, _ := cmd.Flags().GetStringSlice("device")
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()

		if err := a.Export(cmd.Context(), out, start, end, devices, format); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}

		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

// devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "View device metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetBool("current")
		asOf, _ := cmd.Flags().GetString("as-of")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var devices []eew.DeviceMetadata
		switch {
		case current:
			devices, err = a.CurrentDevices(ctx)
		case asOf != "":
			devices, err = a.DevicesAsOf(ctx, asOf)
		default:
			devices, err = a.DevicesFullHistory(ctx)
		}
		if err != nil {
			return fmt.Errorf("fetching devices: %w", err)
		}

		if len(devices) == 0 {
			fmt.Println("No devices found.")
			return nil
		}

		for _, d := range devices {
			tag := ""
			if d.IsCurrentRow {
				tag = "  [current]"
			}
			fmt.Printf("%-8s  %9.4f,%9.4f  valid %.0f..%.0f%s\n",
				d.DeviceID, d.Latitude, d.Longitude, d.EffectiveFrom, d.EffectiveTo, tag)
		}
		return nil
	},
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", `UTC start date, e.g. "2018-02-16 23:39:00"`)
	cmd.Flags().String("end", "", `UTC end date, e.g. "2018-02-16 23:43:00"`)
	cmd.Flags().StringSliceP("device", "d", nil, "Device id(s) to fetch; all devices when omitted")
	cmd.Flags().String("time-field", "", "Record timestamp to filter on: cloud_t or device_t")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(recordsCmd)
	addQueryFlags(recordsCmd)
	rootCmd.AddCommand(keysCmd)
	addQueryFlags(keysCmd)
	rootCmd.AddCommand(exportCmd)
	addQueryFlags(exportCmd)
	exportCmd.Flags().String("format", "csv", "Output format: csv or xlsx")
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.Flags().Bool("current", false, "Only currently-valid rows")
	devicesCmd.Flags().String("as-of", "", `Rows valid at a UTC date, e.g. "2018-02-16 23:39:00"`)
}

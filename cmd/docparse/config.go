package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialise configuration",
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		path := cfgFile
		if path == "" {
			path = h.ConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// configValue is one row of `config list`.
type configValue struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	Default     any    `json:"default"`
	Env         string `json:"env"`
	Description string `json:"description"`
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every config key with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := getConfig(h)
		if err != nil {
			return err
		}

		entries := config.DefaultEntries()
		rows := make([]configValue, 0, len(entries))
		for _, e := range entries {
			v, err := cfgMgr.Value(e.Key)
			if err != nil {
				return err
			}
			if e.Key == "store.redis.password" && v != "" {
				v = "********"
			}
			rows = append(rows, configValue{
				Key:         e.Key,
				Value:       v,
				Default:     e.Value,
				Env:         e.Env(),
				Description: e.Description,
			})
		}
		return api.Output(map[string]any{
			"file":   cfgMgr.ConfigFileUsed(),
			"values": rows,
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show the effective value of one config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := getConfig(h)
		if err != nil {
			return err
		}

		entry, err := config.GetDefault(args[0])
		if err != nil {
			return err
		}
		v, err := cfgMgr.Value(args[0])
		if err != nil {
			return err
		}
		return api.Output(configValue{
			Key:         entry.Key,
			Value:       v,
			Default:     entry.Value,
			Env:         entry.Env(),
			Description: entry.Description,
		})
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)

	rootCmd.AddCommand(configCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-wardrobe/internal/domain/recommendation"
	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
	"github.com/yanqian/ai-wardrobe/internal/infra/config"
	"github.com/yanqian/ai-wardrobe/internal/infra/cutout"
	"github.com/yanqian/ai-wardrobe/internal/infra/weather/qweather"
	"github.com/yanqian/ai-wardrobe/internal/infra/weathercache"
	"github.com/yanqian/ai-wardrobe/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wardrobectl",
		Short:         "Offline tools for the wardrobe service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCutoutCmd(), newWeatherCmd(), newSuggestCmd(), newCitiesCmd())
	return root
}

func newCutoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutout <input> <output.png>",
		Short: "Remove the background of a photo with the local backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxDimension, _ := cmd.Flags().GetInt("max-dimension")
			cfg := cutout.DefaultConfig()
			cfg.MaxDimension = maxDimension
			remover, err := cutout.NewRemover(cfg)
			if err != nil {
				return err
			}
			input, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			output, err := remover.Remove(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], output, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[1], len(output))
			return nil
		},
	}
	cmd.Flags().Int("max-dimension", cutout.DefaultConfig().MaxDimension, "longest edge of the output image")
	return cmd
}

func newWeatherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather [location]",
		Short: "Show the current weather for a LocationID or lon,lat pair",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, creds, err := weatherService()
			if err != nil {
				return err
			}
			reading := svc.Current(cmd.Context(), creds, firstArg(args))
			output, _ := cmd.Flags().GetString("output")
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), reading)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %g°C (feels %g°C), humidity %g%%, %s %s\n",
				reading.Location, reading.Condition, reading.Temperature, reading.FeelsLike,
				reading.Humidity, reading.WindDir, reading.WindScale)
			if reading.Simulated {
				fmt.Fprintln(cmd.OutOrStdout(), "(simulated reading)")
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format (text, json)")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [location]",
		Short: "Print the rule-based clothing suggestion for the current weather",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, creds, err := weatherService()
			if err != nil {
				return err
			}
			suggestion := recommendation.Suggest(svc.Current(cmd.Context(), creds, firstArg(args)))
			fmt.Fprintln(cmd.OutOrStdout(), suggestion.Message)
			fmt.Fprintln(cmd.OutOrStdout(), suggestion.Suggestion)
			fmt.Fprintf(cmd.OutOrStdout(), "seasons: %s\n", strings.Join(suggestion.Seasons, ", "))
			return nil
		},
	}
}

func newCitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities <query>",
		Short: "Search LocationIDs by city name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			svc, creds, err := weatherService()
			if err != nil {
				return err
			}
			cities, err := svc.SearchCities(cmd.Context(), creds, args[0], limit)
			if err != nil {
				return err
			}
			for _, city := range cities {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", city.ID, city.Name, city.Adm1)
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "l", 10, "maximum number of results (1-20)")
	return cmd
}

func weatherService() (*weather.Service, weather.Credentials, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, weather.Credentials{}, err
	}
	svc := weather.NewService(weather.Config{
		DefaultLocation: cfg.Weather.DefaultLocation,
		Timeout:         cfg.Weather.Timeout,
		CacheTTL:        cfg.Weather.CacheTTL,
	}, qweather.NewClient(cfg.Weather.Timeout), weathercache.NewMemoryCache(), logger.New())
	return svc, weather.Credentials{APIKey: cfg.Weather.APIKey, APIHost: cfg.Weather.APIHost}, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

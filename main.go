package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nealhardesty/j2m/internal/centermouse"
	"github.com/nealhardesty/j2m/internal/config"
	"github.com/nealhardesty/j2m/internal/desktop"
	"github.com/nealhardesty/j2m/internal/joystick"
	"github.com/nealhardesty/j2m/internal/keyboard"
	"github.com/nealhardesty/j2m/internal/logging"
)

func main() {
	var (
		configPath string
		logPath    string
		logLevel   string
		console    bool
	)

	var rootCmd = &cobra.Command{
		Use:   "j2m",
		Short: "Joystick to Mouse recenter",
		Long: `Watches one joystick button and, each time it is released, moves the mouse
cursor to a fixed fraction of the screen (by way of the top-left corner).`,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run(configPath, logPath, logLevel, console))
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultFile, "configuration file")
	rootCmd.Flags().StringVar(&logPath, "log-file", logging.DefaultFile, "log file, truncated on every run")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&console, "console", false, "also write the log to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List attached joysticks and HID game controllers",
		Run: func(cmd *cobra.Command, args []string) {
			listDevices(cmd.OutOrStdout())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error on Execute(): %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, logLevel string, console bool) int {
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return 1
	}
	defer logFile.Close()

	cfg := logging.Config{Level: logLevel, Output: logFile}
	if console {
		cfg.Console = os.Stderr
	}
	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = centermouse.Run(ctx, centermouse.Options{
		ConfigPath:  configPath,
		Subsystem:   &joystick.Evdev{Log: log},
		Screen:      desktop.Screen{},
		NewKeyboard: newKeyboard,
		Log:         log,
	})
	return centermouse.ExitCode(err)
}

func newKeyboard(k keyboard.Key) (centermouse.Tapper, error) {
	kb, err := keyboard.New(k)
	if err != nil {
		return nil, err
	}
	return kb, nil
}

func listDevices(w io.Writer) {
	sub := &joystick.Evdev{}
	devices, err := sub.Enumerate()
	if err != nil {
		fmt.Fprintf(w, "Error enumerating joysticks: %v\n", err)
	} else if len(devices) == 0 {
		fmt.Fprintln(w, "No joysticks detected.")
	} else {
		fmt.Fprintf(w, "%d joystick(s) detected:\n", len(devices))
		for _, d := range devices {
			fmt.Fprintf(w, "  %d: %s with %d button(s) [%04x:%04x %s]\n",
				d.Index, d.Name, d.ButtonCount, d.Vendor, d.Product, d.Path)
		}
	}

	controllers := joystick.ListHID()
	if len(controllers) == 0 {
		return
	}
	fmt.Fprintln(w, "HID game controllers:")
	for _, c := range controllers {
		fmt.Fprintf(w, "  %s\n", c)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/dispatch"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/model"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/policy"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/printing"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/registry"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/server"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/store"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/surface"
	"github.com/NinjaBeameR/SwiftBill-POS-sub001/internal/transport"
)

func newLogger() *zap.Logger {
	if os.Getenv("SWIFTBILL_DEBUG") != "" {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}

// buildPrinting assembles the print orchestration stack shared by serve and
// print-test.
func buildPrinting(cfg model.Config, events printing.EventSink, log *zap.Logger) (*printing.Service, *registry.Registry, error) {
	chromePath, err := surface.ValidateChrome(cfg.ChromePath)
	if err != nil {
		return nil, nil, err
	}
	log.Info("rendering surface ready",
		zap.String("chrome", chromePath),
		zap.String("version", surface.ChromeVersion(chromePath)))

	reg := registry.New(registry.NewFileProber(cfg.DeviceFile, log), cfg.DeviceTTL, log)
	selector := policy.NewSelector(cfg.DevicePatterns)
	dispatcher := dispatch.New(
		surface.NewChromeFactory(chromePath),
		transport.NewTCP(),
		reg,
		selector,
		cfg.RenderDelay,
		cfg.JobTimeout,
		log,
	)
	svc := printing.NewService(reg, selector, dispatcher, events, cfg.Location, log)
	return svc, reg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the POS API and print agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()
			cfg := model.LoadConfig()

			hub := server.NewHub(log)
			svc, reg, err := buildPrinting(cfg, hub, log)
			if err != nil {
				return err
			}
			reg.Preload(cmd.Context())

			catalog, err := store.LoadCatalog(cfg.CatalogFile)
			if err != nil {
				log.Warn("menu catalog unavailable, starting empty", zap.Error(err))
				catalog = store.NewCatalog(nil)
			}
			st := store.NewStore(cfg.BillsFile, cfg.BillPDFDir, log)

			srv := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: server.New(svc, reg, st, catalog, hub, log).Router(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", zap.String("addr", cfg.ListenAddr))
				errCh <- srv.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info("shutting down", zap.String("signal", sig.String()))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Enumerate output devices and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()
			cfg := model.LoadConfig()

			reg := registry.New(registry.NewFileProber(cfg.DeviceFile, log), cfg.DeviceTTL, log)
			devices, err := reg.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("no devices configured")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Printf("%s %-24s %-21s %s\n", marker, d.Name, d.Addr, d.Status)
			}
			return nil
		},
	}
}

func discoverCmd() *cobra.Command {
	var subnet string
	var save bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan the local subnet for raw-socket printers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := model.LoadConfig()
			found, err := registry.Discover(subnet)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("no printers found")
				return nil
			}
			for _, addr := range found {
				fmt.Println(addr)
			}
			if save {
				return appendDevices(cfg.DeviceFile, found)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subnet, "subnet", "", "three leading octets, e.g. 192.168.1 (default: derive from local address)")
	cmd.Flags().BoolVar(&save, "save", false, "append discovered printers to the device file")
	return cmd
}

func printTestCmd() *cobra.Command {
	var device string
	cmd := &cobra.Command{
		Use:   "print-test",
		Short: "Print a test ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()
			cfg := model.LoadConfig()

			svc, reg, err := buildPrinting(cfg, nil, log)
			if err != nil {
				return err
			}
			reg.Preload(cmd.Context())

			content := fmt.Sprintf("SWIFTBILL TEST TICKET\n%s\n%s",
				cfg.Location, time.Now().Format("02/01/2006 15:04"))
			result := svc.PrintTicket(cmd.Context(), content, device)
			if !result.Success {
				return fmt.Errorf("print failed on %q: %s (%s)", result.Device, result.Message, result.ErrorKind)
			}
			fmt.Printf("printed on %s\n", result.Device)
			return nil
		},
	}
	cmd.Flags().StringVar(&device, "device", "", "target device name (default: selection policy)")
	return cmd
}

// appendDevices merges newly discovered addresses into the device file,
// skipping addresses already present.
func appendDevices(path string, addrs []string) error {
	type entry struct {
		Name      string `json:"name"`
		Addr      string `json:"addr"`
		Default   bool   `json:"default,omitempty"`
		WidthDots int    `json:"widthDots,omitempty"`
		Protocol  string `json:"protocol,omitempty"`
	}

	var entries []entry
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse device file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Addr] = true
	}
	added := 0
	for _, addr := range addrs {
		if known[addr] {
			continue
		}
		entries = append(entries, entry{
			Name: fmt.Sprintf("printer-%d", len(entries)+1),
			Addr: addr,
		})
		added++
	}
	if added == 0 {
		fmt.Println("nothing new to save")
		return nil
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Printf("saved %d new device(s) to %s\n", added, path)
	return nil
}

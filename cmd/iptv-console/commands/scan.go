package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/alorle/iptv-console/internal/scan"
)

// scanRequestFlags collects the flags shared by `scan start` and
// `scan watch`.
type scanRequestFlags struct {
	mode      string
	baseURL   string
	startIP   string
	endIP     string
	protocol  string
	ports     []int
	timeoutMS int64
	preset    string
	addresses []string
	playlist  string
}

func (f *scanRequestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "template", "scan mode: template, multicast or m3u_batch")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "URL template containing the {ip} placeholder (template mode)")
	cmd.Flags().StringVar(&f.startIP, "start-ip", "", "first IPv4 address of the range (template mode)")
	cmd.Flags().StringVar(&f.endIP, "end-ip", "", "last IPv4 address of the range (template mode)")
	cmd.Flags().StringVar(&f.protocol, "protocol", "", "stream protocol hint, e.g. udp or http")
	cmd.Flags().IntSliceVar(&f.ports, "port", nil, "candidate port, repeatable")
	cmd.Flags().Int64Var(&f.timeoutMS, "timeout-ms", 0, "per-stream probe timeout in milliseconds")
	cmd.Flags().StringVar(&f.preset, "preset", "", "backend scan preset name")
	cmd.Flags().StringArrayVar(&f.addresses, "address", nil, "multicast address, repeatable (multicast mode)")
	cmd.Flags().StringVar(&f.playlist, "playlist", "", "playlist id to re-validate (m3u_batch mode)")
}

func (f *scanRequestFlags) build() scan.Request {
	return scan.Request{
		Mode:       scan.Mode(f.mode),
		BaseURL:    f.baseURL,
		StartIP:    f.startIP,
		EndIP:      f.endIP,
		Protocol:   f.protocol,
		Ports:      f.ports,
		TimeoutMS:  f.timeoutMS,
		Preset:     f.preset,
		Addresses:  f.addresses,
		PlaylistID: f.playlist,
	}
}

func newScanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Start, follow and inspect channel scans",
	}

	cmd.AddCommand(
		newScanStartCommand(a),
		newScanStatusCommand(a),
		newScanWatchCommand(a),
		newScanCancelCommand(a),
		newScanHistoryCommand(a),
	)

	return cmd
}

func newScanStartCommand(a *app) *cobra.Command {
	flags := &scanRequestFlags{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Submit a scan and print its id without waiting",
		RunE: func(cmd *cobra.Command, args []string) error {
			request := flags.build()
			if err := request.Validate(); err != nil {
				return err
			}

			handle, err := a.scanAPI().StartScan(cmd.Context(), request)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scan %s submitted (%s, %d candidates)\n",
				handle.ScanID, handle.Status, handle.Total)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newScanStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <scan-id>",
		Short: "Fetch the current snapshot of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := a.scanAPI().GetScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSnapshot(cmd, snapshot)
			return nil
		},
	}
}

func newScanWatchCommand(a *app) *cobra.Command {
	flags := &scanRequestFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Submit a scan and follow it until it finishes; Ctrl-C cancels",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			service, err := a.scanService(func(snapshot scan.Snapshot) {
				fmt.Fprintf(out, "%-9s  %d/%d (%.1f%%)  valid=%d invalid=%d\n",
					snapshot.Status, snapshot.Progress, snapshot.Total,
					snapshot.Percent(), snapshot.Valid, snapshot.Invalid)
			}, func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "poll failed: %v\n", err)
			})
			if err != nil {
				return err
			}

			if a.cfg.Metrics.Enabled {
				go serveMetrics(a)
			}

			ctx := cmd.Context()
			if _, err := service.Start(ctx, flags.build()); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-sigCh:
				service.Cancel(ctx)
				<-service.Done()
			case <-service.Done():
			}

			if snapshot, ok := service.Latest(); ok {
				printScanSummary(cmd, snapshot)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newScanCancelCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <scan-id>",
		Short: "Request backend cancellation of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cancelled, err := a.scanAPI().CancelScan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if cancelled {
				fmt.Fprintf(cmd.OutOrStdout(), "scan %s cancelled\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "scan %s already finished\n", args[0])
			}
			return nil
		},
	}
}

func newScanHistoryCommand(a *app) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "history [scan-id]",
		Short: "List locally recorded scans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.scanService(nil, nil)
			if err != nil {
				return err
			}

			if prune {
				cutoff := time.Now().Add(-a.cfg.History.Retention)
				if err := service.Prune(cmd.Context(), cutoff); err != nil {
					return err
				}
			}

			if len(args) == 1 {
				snapshot, err := service.HistoryFor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSnapshot(cmd, snapshot)
				return nil
			}

			snapshots, err := service.History(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SCAN ID\tSTATUS\tPROGRESS\tVALID\tINVALID\tSTARTED")
			for _, snapshot := range snapshots {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%d\t%s\n",
					snapshot.ScanID, snapshot.Status, snapshot.Progress, snapshot.Total,
					snapshot.Valid, snapshot.Invalid,
					snapshot.StartedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "delete entries older than the configured retention first")
	return cmd
}

func printSnapshot(cmd *cobra.Command, snapshot scan.Snapshot) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "scan:     %s\n", snapshot.ScanID)
	fmt.Fprintf(out, "status:   %s\n", snapshot.Status)
	fmt.Fprintf(out, "progress: %d/%d (%.1f%%)\n", snapshot.Progress, snapshot.Total, snapshot.Percent())
	fmt.Fprintf(out, "valid:    %d\n", snapshot.Valid)
	fmt.Fprintf(out, "invalid:  %d\n", snapshot.Invalid)
	if snapshot.Error != "" {
		fmt.Fprintf(out, "error:    %s\n", snapshot.Error)
	}
}

func printScanSummary(cmd *cobra.Command, snapshot scan.Snapshot) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\nscan %s finished: %s (%d valid, %d invalid of %d)\n",
		snapshot.ScanID, snapshot.Status, snapshot.Valid, snapshot.Invalid, snapshot.Total)

	if len(snapshot.Channels) > 0 {
		w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tURL\tGROUP")
		for _, ch := range snapshot.Channels {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ch.Name, ch.URL, ch.Group)
		}
		_ = w.Flush()
	}
}

// serveMetrics exposes the Prometheus registry for the lifetime of a watch
// session.
func serveMetrics(a *app) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.logger.Info("metrics listener started", "address", a.cfg.Metrics.Address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.logger.Warn("metrics listener stopped", "error", err)
	}
}

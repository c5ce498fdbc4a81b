package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/log"
	"github.com/cuemby/warren-vm/pkg/metrics"
	"github.com/cuemby/warren-vm/pkg/supervisor"
)

var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Manage the single-session VM supervisor",
}

var vmStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a VM session in the foreground and pump RPC messages with stdin/stdout",
	Long: `start plays the role of the (out-of-scope) desktop shell for manual
testing: it starts the hypervisor, prints "ready"/"rpc"/"error" events as
they arrive, forwards each line typed on stdin to the guest over RPC, and
tears the session down on EOF or Ctrl-C.`,
	RunE: runVMStart,
}

func init() {
	vmStartCmd.Flags().String("working-folder", "", "Host directory to expose to the guest as workdir")
	vmStartCmd.Flags().String("task-id", "", "Task whose working folder should be used instead of --working-folder")
	vmStartCmd.Flags().String("auth-profile", "", "Credential profile to bind as authstate")
	vmStartCmd.Flags().String("metrics-addr", "", "If set, serve Prometheus metrics at http://<addr>/metrics for the life of the session")
	vmCmd.AddCommand(vmStartCmd)
}

// serveMetrics starts a background HTTP server exposing /metrics and
// returns immediately; it never blocks the caller and logs (rather than
// fails) a listen error, since the metrics endpoint is a diagnostic aid,
// not a requirement for a session to run.
func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithComponent("cli").Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	fmt.Printf("metrics endpoint: http://%s/metrics\n", addr)
}

func runVMStart(cmd *cobra.Command, args []string) error {
	env, err := newCliEnv(cmd)
	if err != nil {
		return err
	}
	workingFolder, _ := cmd.Flags().GetString("working-folder")
	taskID, _ := cmd.Flags().GetString("task-id")
	authProfile, _ := cmd.Flags().GetString("auth-profile")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	serveMetrics(metricsAddr)

	sessionHistory, err := env.openHistory()
	if err != nil {
		return err
	}
	defer sessionHistory.Close()

	sink := supervisor.FuncSink(func(event, payload string) {
		switch event {
		case supervisor.EventReady:
			fmt.Println("[ready]")
		case supervisor.EventRPC:
			fmt.Printf("[rpc] %s\n", payload)
		case supervisor.EventError:
			fmt.Printf("[error] %s\n", payload)
		}
	})

	sup := env.newSupervisor(sink, sessionHistory)

	resp, err := sup.Start(workingFolder, taskID, authProfile)
	if err != nil {
		return err
	}
	fmt.Printf("status=%s log=%s\n", resp.Status, resp.LogPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-sigCh:
			log.WithComponent("cli").Info().Msg("received interrupt, stopping vm session")
			return sup.Stop()
		case line, ok := <-lines:
			if !ok {
				return sup.Stop()
			}
			if err := sup.Send(line); err != nil {
				fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			}
		}
	}
}

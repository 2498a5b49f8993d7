package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/client"
	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/ui"
)

var listJSON bool

func init() {
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the object names as a JSON array")
}

// query sends env and waits for the matching reply type.
func query(ctx context.Context, c *client.Client, env command.Envelope, want string, wire *ui.WireOutput) (command.Reply, error) {
	if raw, err := json.Marshal(env); err == nil {
		wire.Sent(string(raw))
	}
	if err := c.Send(ctx, env); err != nil {
		return command.Reply{}, err
	}

	for {
		reply, err := c.ReadReply(ctx)
		if err != nil {
			return command.Reply{}, fmt.Errorf("no %s reply: %w", want, err)
		}
		wire.Received(reply.Encode())
		if reply.Type == want {
			return reply, nil
		}
	}
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the host answers",
	Long: `Send a ping and wait for the pong. The round trip includes at least one
host loop tick, so it reflects the configured poll delays.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(os.Stdout)
		wire := ui.NewWireOutput()

		c, err := newClient(cmd.Context())
		if err != nil {
			printer.PrintError("Ping failed", err, connectTips)
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		start := time.Now()
		if _, err := query(ctx, c, command.Ping(), command.ReplyPong, wire); err != nil {
			printer.PrintError("Ping failed", err, connectTips)
			return err
		}

		printer.PrintSuccess("Pong received",
			ui.Param{Key: "Host", Value: c.URL()},
			ui.Param{Key: "Round trip", Value: time.Since(start).Round(time.Microsecond).String()},
		)
		if verbose {
			printer.PrintWire(wire)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the objects in the host scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(os.Stdout)
		wire := ui.NewWireOutput()

		c, err := newClient(cmd.Context())
		if err != nil {
			printer.PrintError("List failed", err, connectTips)
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		reply, err := query(ctx, c, command.ListObjects(), command.ReplyObjects, wire)
		if err != nil {
			printer.PrintError("List failed", err, connectTips)
			return err
		}

		if listJSON {
			data, err := json.Marshal(reply.Objects)
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printer.PrintSuccess("Scene objects",
			ui.Param{Key: "Host", Value: c.URL()},
			ui.Param{Key: "Count", Value: strconv.Itoa(len(reply.Objects))},
		)
		printer.Newline()
		printer.PrintList("Objects", reply.Objects)
		if verbose {
			printer.PrintWire(wire)
		}
		return nil
	},
}

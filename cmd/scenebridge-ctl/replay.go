package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/dispatch"
	"github.com/muurk/scenebridge/internal/server"
	"github.com/muurk/scenebridge/internal/ui"
)

var (
	replayPause   time.Duration
	replaySession string
)

func init() {
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)

	replayCmd.Flags().DurationVar(&replayPause, "pause", 0, "Delay between messages (0 keeps the captured spacing)")
	replayCmd.Flags().StringVar(&replaySession, "session", "", "Only replay messages from this session ID")
	inspectCmd.Flags().StringVar(&replaySession, "session", "", "Only inspect messages from this session ID")
}

func readCaptureFile(path, direction string) ([]server.CaptureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	records, err := server.ReadCapture(f, direction)
	if err != nil {
		return nil, err
	}
	if replaySession == "" {
		return records, nil
	}

	kept := records[:0]
	for _, r := range records {
		if r.Session == replaySession {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// hostReason names the command a payload carries and the reason the host
// will reject it with before touching the scene, if any.
func hostReason(payload string) (name string, reason dispatch.Reason) {
	env, err := command.ParseString(payload)
	switch {
	case errors.Is(err, command.ErrBadField):
		return string(env.Type), dispatch.ReasonBadField
	case err != nil:
		return "malformed", dispatch.ReasonMalformed
	case !env.Type.Known():
		return string(env.Type), dispatch.ReasonUnknownType
	}
	return string(env.Type), dispatch.ReasonNone
}

// replayGroup is the messages of one command type in a capture.
type replayGroup struct {
	name     string
	count    int
	last     int // index of the final message
	rejected int
	reason   dispatch.Reason
}

// done is the step update shown once every message of the group is sent.
func (g replayGroup) done() ui.StepUpdate {
	u := ui.Done(strconv.Itoa(g.count) + " sent")
	if g.rejected > 0 {
		u.Reason = fmt.Sprintf("%d %s", g.rejected, g.reason)
	}
	return u
}

// groupByType buckets records by command type, ordered by each group's last
// message so groups finish in step order. member maps a record to its group.
func groupByType(records []server.CaptureRecord) (groups []replayGroup, member []int) {
	index := map[string]int{}
	member = make([]int, len(records))
	for i, r := range records {
		name, reason := hostReason(r.Payload)
		if name == "" {
			name = `""`
		}
		g, ok := index[name]
		if !ok {
			g = len(groups)
			index[name] = g
			groups = append(groups, replayGroup{name: name})
		}
		groups[g].count++
		groups[g].last = i
		if reason != dispatch.ReasonNone {
			groups[g].rejected++
			groups[g].reason = reason
		}
		member[i] = g
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return groups[order[a]].last < groups[order[b]].last })

	sorted := make([]replayGroup, len(groups))
	rank := make([]int, len(groups))
	for pos, g := range order {
		sorted[pos] = groups[g]
		rank[g] = pos
	}
	for i := range member {
		member[i] = rank[member[i]]
	}
	return sorted, member
}

var replayCmd = &cobra.Command{
	Use:   "replay <capture.jsonl>",
	Short: "Resend the controller messages of a capture",
	Long: `Read a capture written by 'scenebridge-server serve --capture-dir' and send
every controller->host message to the host again, verbatim.

Progress is shown per command type. Messages the host will reject before
touching the scene are still sent, and their reason is shown on the line.
Without --pause the captured spacing between messages is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	records, err := readCaptureFile(args[0], server.DirectionInbound)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.NewPrinter(os.Stdout).PrintWarning("Nothing to replay", ui.Param{Key: "File", Value: args[0]})
		return nil
	}

	c, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	groups, member := groupByType(records)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Capture replay",
		Command: "scenebridge-ctl replay " + args[0],
		Params: []ui.Param{
			{Key: "Host", Value: c.URL()},
			{Key: "Messages", Value: strconv.Itoa(len(records))},
		},
		StepNames:       names,
		Troubleshooting: connectTips,
		Verbose:         verbose,
	})
	wire := runner.Wire()

	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		rejected := 0
		started := -1
		for i, r := range records {
			g := member[i]
			if i > 0 {
				delay := replayPause
				if delay == 0 {
					delay = r.Timestamp.Sub(records[i-1].Timestamp)
				}
				if err := sleepCtx(ctx, delay); err != nil {
					onStep(g+1, ui.Failed(err))
					return nil, err
				}
			}
			// Groups finish in step order, so only the lowest open one is shown running
			if started < g && (g == 0 || groups[g-1].last < i) {
				onStep(g+1, ui.Running())
				started = g
			}

			sendCtx, cancel := context.WithTimeout(ctx, timeout)
			err := c.SendRaw(sendCtx, r.Payload)
			cancel()
			if err != nil {
				err = fmt.Errorf("message %d: %w", i+1, err)
				onStep(g+1, ui.Failed(err))
				return nil, err
			}
			wire.Sent(r.Payload)

			if i == groups[g].last {
				onStep(g+1, groups[g].done())
				rejected += groups[g].rejected
			}
		}
		return []ui.Param{
			{Key: "Sent", Value: strconv.Itoa(len(records))},
			{Key: "Command types", Value: strconv.Itoa(len(groups))},
			{Key: "Rejected by host", Value: strconv.Itoa(rejected)},
		}, nil
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// captureSummary counts the messages of one capture by kind.
type captureSummary struct {
	Sessions  map[string]int
	Inbound   map[string]int
	Outbound  map[string]int
	Malformed int
	Bytes     int
	First     time.Time
	Last      time.Time
}

// summarizeCapture classifies each record by the envelope or reply type it
// carries. Inbound payloads that are not a typed JSON object count as
// malformed.
func summarizeCapture(records []server.CaptureRecord) captureSummary {
	s := captureSummary{
		Sessions: map[string]int{},
		Inbound:  map[string]int{},
		Outbound: map[string]int{},
	}
	for _, r := range records {
		s.Sessions[r.Session]++
		s.Bytes += r.PayloadLen
		if s.First.IsZero() || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}

		switch r.Direction {
		case server.DirectionInbound:
			name, reason := hostReason(r.Payload)
			if reason == dispatch.ReasonMalformed {
				s.Malformed++
				continue
			}
			s.Inbound[name]++
		case server.DirectionOutbound:
			reply, err := command.ParseReply([]byte(r.Payload))
			if err != nil {
				s.Outbound["unknown"]++
				continue
			}
			s.Outbound[reply.Type]++
		}
	}
	return s
}

// countLines renders a count map as sorted "key: n" lines.
func countLines(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %d", k, m[k])
	}
	return lines
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <capture.jsonl>",
	Short: "Summarise a capture file",
	Long: `Count the messages of a capture by session, direction and command type.
Does not connect to a host.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.NewPrinter(os.Stdout)

		records, err := readCaptureFile(args[0], "")
		if err != nil {
			printer.PrintError("Inspect failed", err, nil)
			return err
		}
		if len(records) == 0 {
			printer.PrintWarning("Empty capture", ui.Param{Key: "File", Value: args[0]})
			return nil
		}

		s := summarizeCapture(records)
		printer.PrintSuccess("Capture summary",
			ui.Param{Key: "File", Value: args[0]},
			ui.Param{Key: "Messages", Value: strconv.Itoa(len(records))},
			ui.Param{Key: "Sessions", Value: strconv.Itoa(len(s.Sessions))},
			ui.Param{Key: "Payload bytes", Value: strconv.Itoa(s.Bytes)},
			ui.Param{Key: "Span", Value: s.Last.Sub(s.First).Round(time.Millisecond).String()},
			ui.Param{Key: "Malformed", Value: strconv.Itoa(s.Malformed)},
		)
		printer.Newline()
		printer.PrintList(server.DirectionInbound, countLines(s.Inbound))
		printer.Newline()
		printer.PrintList(server.DirectionOutbound, countLines(s.Outbound))

		if verbose {
			wire := ui.NewWireOutput()
			for _, r := range records {
				if r.Direction == server.DirectionInbound {
					wire.Sent(r.Payload)
				} else {
					wire.Received(r.Payload)
				}
			}
			printer.PrintWire(wire)
		}
		return nil
	},
}

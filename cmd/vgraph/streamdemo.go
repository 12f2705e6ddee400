package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lucidcode/vgraph/internal/config"
	"github.com/lucidcode/vgraph/transport"
	"github.com/lucidcode/vgraph/vgraph"
)

// newStreamDemoCmd wires the streaming driver (§4.8) to the transport
// package's frame writer: every chunk the driver hands to OnSerialize
// is written as one transport.Frame to stdout, in the same
// header-line-plus-payload shape transport.Writer always uses.
//
// Grounded on cmd/glyph/main.go's "stream demo" subcommand, which
// drives the teacher's own StreamSession end to end for a fixed demo
// payload rather than taking arbitrary stdin.
func newStreamDemoCmd() *cobra.Command {
	var scopeID string

	cmd := &cobra.Command{
		Use:   "stream-demo",
		Short: "Stream a promise-bearing root through the streaming driver onto stdout frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			return runStreamDemo(cmd.OutOrStdout(), scopeID, cfg.Streaming)
		},
	}

	cmd.Flags().StringVar(&scopeID, "scope", "demo", "cross-mode scope id")
	return cmd
}

func runStreamDemo(w io.Writer, scopeID string, streaming config.StreamingConfig) error {
	ctx := context.Background()
	opts := vgraph.Options{ScopeID: scopeID}

	driver := vgraph.NewStreamingDriver(ctx, opts, scopeID)
	writerOpts := []transport.WriterOption{transport.WithCRC()}
	if streaming.CompressMinBytes > 0 {
		writerOpts = append(writerOpts, transport.WithCompression(streaming.CompressMinBytes))
	}
	writer := transport.NewWriter(w, writerOpts...)

	var sid uint64
	var seq uint64
	driver.OnSerialize = func(chunk string) {
		kind := transport.KindDoc
		if seq > 0 {
			kind = transport.KindFollow
		}
		if err := writer.WriteFrame(&transport.Frame{
			Version: transport.Version,
			SID:     sid,
			Seq:     seq,
			Kind:    kind,
			Payload: []byte(chunk),
		}); err != nil {
			fmt.Println("write frame:", err)
		}
		seq++
	}
	driver.OnError = func(err error) {
		_ = writer.WriteErr(sid, seq, []byte(err.Error()))
		seq++
	}
	driver.OnDone = func() {
		_ = writer.WriteFinal(sid, seq, transport.KindFinal, nil)
	}

	pending := vgraph.PromiseVal(false, false, nil)
	if err := driver.Write("globalThis", "root", pending); err != nil {
		return err
	}

	const rootID = 0
	driver.Follow(rootID, vgraph.FollowUpResolve, "42")

	driver.Flush()
	return nil
}

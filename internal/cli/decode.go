package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"httpbridge-core/internal/bridge"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/marshal"
	"httpbridge-core/internal/wire"
)

var (
	decodeHeadersOnly bool
	decodeAsJSON      bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a marshalled request blob (or header-only blob)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeHeadersOnly, "headers", false, "Treat input as a header-only blob")
	decodeCmd.Flags().BoolVar(&decodeAsJSON, "json", false, "Print machine-readable JSON")
}

func runDecode(cmd *cobra.Command, args []string) error {
	blob, err := readInput(args)
	if err != nil {
		return err
	}

	if decodeHeadersOnly {
		headers := httpmsg.NewHeaderList()
		if err := marshal.DecodeHeaders(headers, wire.NewCursor(blob)); err != nil {
			return err
		}
		return printHeaders(headers)
	}

	builder := bridge.NewRequestBuilder(bridge.NewLocalRuntime())
	msg, err := builder.DecodeRequest(blob, bridge.NilHandle)
	if err != nil {
		return err
	}
	defer msg.Release()

	if decodeAsJSON {
		return printJSON(map[string]interface{}{
			"version": uint32(msg.Version()),
			"family":  msg.Version().String(),
			"method":  string(msg.Method()),
			"path":    string(msg.Path()),
			"headers": headerPairs(msg.Headers()),
		})
	}

	label := color.New(color.FgCyan, color.Bold)
	label.Print("version: ")
	fmt.Printf("%d (%s)\n", uint32(msg.Version()), msg.Version())
	if msg.Version() != httpmsg.VersionHTTP2 {
		label.Print("method:  ")
		fmt.Println(string(msg.Method()))
		label.Print("path:    ")
		fmt.Println(string(msg.Path()))
	}
	return printHeaders(msg.Headers())
}

func printHeaders(headers *httpmsg.HeaderList) error {
	if decodeAsJSON {
		return printJSON(headerPairs(headers))
	}
	name := color.New(color.FgGreen)
	for i := 0; i < headers.Len(); i++ {
		h, err := headers.At(i)
		if err != nil {
			return err
		}
		name.Print(string(h.Name))
		fmt.Printf(": %s\n", string(h.Value))
	}
	return nil
}

func headerPairs(headers *httpmsg.HeaderList) [][2]string {
	pairs := make([][2]string, 0, headers.Len())
	for i := 0; i < headers.Len(); i++ {
		h, _ := headers.At(i)
		pairs = append(pairs, [2]string{string(h.Name), string(h.Value)})
	}
	return pairs
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

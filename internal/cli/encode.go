package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/marshal"
	"httpbridge-core/internal/wire"
)

var encodeOutput string

// requestSpec is the yaml description accepted by the encode command.
type requestSpec struct {
	Version uint32 `yaml:"version"`
	Method  string `yaml:"method"`
	Path    string `yaml:"path"`
	Headers []struct {
		Name  string `yaml:"name"`
		Value string `yaml:"value"`
	} `yaml:"headers"`
}

var encodeCmd = &cobra.Command{
	Use:   "encode [file.yaml]",
	Short: "Encode a yaml request description into a marshalled blob",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "Output file (default stdout)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	var spec requestSpec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return err
	}

	msg, err := specToMessage(&spec)
	if err != nil {
		return err
	}
	defer msg.Release()

	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)
	if err := marshal.EncodeRequest(buf, msg); err != nil {
		return err
	}

	if encodeOutput == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(encodeOutput, buf.Bytes(), 0o644)
}

func specToMessage(spec *requestSpec) (*httpmsg.Message, error) {
	var msg *httpmsg.Message
	switch httpmsg.Version(spec.Version) {
	case httpmsg.VersionHTTP2:
		msg = httpmsg.NewHTTP2Request()
	case httpmsg.VersionHTTP1:
		msg = httpmsg.NewRequest()
	default:
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "unknown version %d", spec.Version)
	}

	if msg.Version() != httpmsg.VersionHTTP2 {
		if err := msg.SetMethod([]byte(spec.Method)); err != nil {
			msg.Release()
			return nil, err
		}
		if err := msg.SetPath([]byte(spec.Path)); err != nil {
			msg.Release()
			return nil, err
		}
	} else if spec.Method != "" || spec.Path != "" {
		msg.Release()
		return nil, errors.Wrap(errors.ErrInvalidArgument, "multiplexed requests carry no method or path")
	}

	for _, h := range spec.Headers {
		msg.Headers().Add([]byte(h.Name), []byte(h.Value))
	}
	return msg, nil
}

// Command bandmodem encodes text into passband samples and decodes them back.
//
//	bandmodem transmit -m "hello" -o tx.txt
//	bandmodem receive -i rx.txt
//	bandmodem loopback -m "hello" --channel ws://host:8080/ws/channel
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/jeongseonghan/bandmodem/internal/channel"
	"github.com/jeongseonghan/bandmodem/internal/config"
	"github.com/jeongseonghan/bandmodem/internal/modem"
	"github.com/jeongseonghan/bandmodem/internal/samplefile"
)

const usage = `Usage: bandmodem <transmit|receive|loopback> [flags]

Run "bandmodem <command> --help" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "bandmodem:", err)
		os.Exit(1)
	}
}

// options are the flags shared by all commands.
type options struct {
	configPath     string
	message        string
	messageFile    string
	input          string
	output         string
	preambleOutput string
	channelURL     string
	compress       bool
	timeout        time.Duration
	verbose        bool
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	cmd, args := args[0], args[1:]

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every pipeline stage")

	switch cmd {
	case "transmit":
		fs.StringVarP(&opts.message, "message", "m", "", "Message to send")
		fs.StringVar(&opts.messageFile, "message-file", "", "Read the message from the first line of this file")
		fs.StringVarP(&opts.output, "output", "o", "", "Write samples to this file instead of stdout")
	case "receive":
		fs.StringVarP(&opts.input, "input", "i", "", "Read samples from this file instead of stdin")
		fs.StringVar(&opts.preambleOutput, "preamble-output", "", "Write the shaped preamble used for synchronization to this file")
	case "loopback":
		fs.StringVarP(&opts.message, "message", "m", "", "Message to send")
		fs.StringVar(&opts.messageFile, "message-file", "", "Read the message from the first line of this file")
		fs.StringVar(&opts.channelURL, "channel", "", "WebSocket channel URL (default: config file, else local loopback)")
		fs.BoolVar(&opts.compress, "compress", false, "Compress samples sent to the channel")
		fs.DurationVar(&opts.timeout, "timeout", 0, "Channel timeout (default: config file)")
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}

	logger := log.NewWithOptions(stderr, log.Options{Prefix: cmd})
	if opts.verbose || cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	mc, err := cfg.ModemConfig()
	if err != nil {
		return err
	}
	m, err := modem.New(mc, modem.WithObserver(modem.LogObserver(logger)))
	if err != nil {
		return err
	}

	switch cmd {
	case "transmit":
		return transmit(m, opts, stdout, logger)
	case "receive":
		return receive(m, opts, stdout, logger)
	default:
		return loopback(m, cfg, opts, stdout, logger)
	}
}

func transmit(m *modem.Modem, opts options, stdout io.Writer, logger *log.Logger) error {
	msg, err := readMessage(opts)
	if err != nil {
		return err
	}
	tx, err := m.Transmit(msg)
	if err != nil {
		return err
	}
	logger.Info("transmitted", "chars", len(msg), "bits", len(tx.Bits), "samples", len(tx.Samples))

	if opts.output == "" {
		return samplefile.WriteReal(stdout, tx.Samples)
	}
	return samplefile.SaveReal(opts.output, tx.Samples)
}

func receive(m *modem.Modem, opts options, stdout io.Writer, logger *log.Logger) error {
	var (
		samples []float64
		err     error
	)
	if opts.input == "" {
		samples, err = samplefile.ReadReal(os.Stdin)
	} else {
		samples, err = samplefile.LoadReal(opts.input)
	}
	if err != nil {
		return err
	}

	if opts.preambleOutput != "" {
		if err := samplefile.SaveComplex(opts.preambleOutput, m.ShapedPreamble()); err != nil {
			return err
		}
	}

	rx, err := m.Receive(samples)
	if err != nil {
		return err
	}
	logger.Info("received", "band", rx.RemovedBand, "carrier", rx.Carrier, "delay", rx.Delay, "gain", rx.Gain)
	_, err = fmt.Fprintln(stdout, rx.Message)
	return err
}

func loopback(m *modem.Modem, cfg *config.Config, opts options, stdout io.Writer, logger *log.Logger) error {
	msg, err := readMessage(opts)
	if err != nil {
		return err
	}

	url, compress := cfg.Channel.URL, cfg.Channel.Compress || opts.compress
	if opts.channelURL != "" {
		url = opts.channelURL
	}
	timeout := cfg.Channel.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	var ch channel.Channel = channel.Loopback{}
	if url != "" {
		ch = channel.NewWSChannel(url, compress)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, rx, err := channel.NewSession(m, ch, logger).Exchange(ctx, msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, rx.Message)
	return err
}

// readMessage returns the -m flag, or the first line of --message-file.
func readMessage(opts options) (string, error) {
	if opts.messageFile == "" {
		return opts.message, nil
	}
	f, err := os.Open(opts.messageFile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

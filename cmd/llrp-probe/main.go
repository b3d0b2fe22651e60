// llrp-probe is a minimal LLRP client for exercising a reader from the
// command line.
//
// It dials a reader, waits for the initial READER_EVENT_NOTIFICATION,
// issues GET_READER_CAPABILITIES, and prints the decoded response
// before disconnecting.
//
// Usage:
//
//	llrp-probe [options]
//
// Options:
//
//	-host     Reader hostname or IP (default: 127.0.0.1)
//	-port     Reader port (default: 5084)
//	-timeout  Connect and transact timeout (default: 5s)
//	-xml      Print the response as XML instead of a field dump
//
// Example:
//
//	llrp-probe -host 192.168.1.50 -port 5084
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pion/logging"

	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrpsession"
	"github.com/openllrp/llrp/pkg/llrptlv"
	"github.com/openllrp/llrp/pkg/llrpxml"
)

func main() {
	var (
		host    = flag.String("host", "127.0.0.1", "reader hostname or IP")
		port    = flag.Int("port", llrpsession.DefaultPort, "reader port")
		timeout = flag.Duration("timeout", 5*time.Second, "connect and transact timeout")
		asXML   = flag.Bool("xml", false, "print the response as XML")
	)
	flag.Parse()

	if err := run(*host, *port, *timeout, *asXML); err != nil {
		log.Fatalf("llrp-probe: %v", err)
	}
}

func run(host string, port int, timeout time.Duration, asXML bool) error {
	reg := llrpspec.Builtin()
	loggerFactory := logging.NewDefaultLoggerFactory()

	sess, err := llrpsession.New(llrpsession.Config{
		Registry:               reg,
		LoggerFactory:          loggerFactory,
		DialTimeout:            timeout,
		DefaultTransactTimeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sess.Connect(ctx, host, port); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), timeout)
		defer closeCancel()
		sess.Close(closeCtx)
	}()

	req := llrptlv.NewMessage(reg.Messages["GET_READER_CAPABILITIES"], 0, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(reg.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"]),
	})

	txCtx, txCancel := context.WithTimeout(context.Background(), timeout)
	defer txCancel()
	resp, err := sess.Transact(txCtx, req)
	if err != nil {
		return fmt.Errorf("GET_READER_CAPABILITIES: %w", err)
	}

	if asXML {
		doc, err := llrpxml.Encode(reg, resp)
		if err != nil {
			return fmt.Errorf("render xml: %w", err)
		}
		os.Stdout.Write(doc)
		fmt.Println()
		return nil
	}

	printMessage(resp, 0)
	return nil
}

func printMessage(msg *llrptlv.Message, depth int) {
	fmt.Printf("%s (MessageID=%d)\n", msg.Name(), msg.MessageID)
	for k, v := range msg.Values {
		fmt.Printf("  %s = %s\n", k, v.String())
	}
	for _, p := range msg.Items {
		printParameter(p, 1)
	}
}

func printParameter(p *llrptlv.Parameter, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%s\n", indent, p.Name())
	for k, v := range p.Values {
		fmt.Printf("%s  %s = %s\n", indent, k, v.String())
	}
	for _, child := range p.Items {
		printParameter(child, depth+1)
	}
}

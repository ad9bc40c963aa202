package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/levslove/tat-mcp-server/pkg/envelope"
)

// runVerifyCmd checks a saved signed payload against the publisher's
// public key, the same check agent clients perform.
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	payloadPath := fs.String("payload", "", "path to a signed payload JSON file")
	pubKey := fs.String("pub", "", "publisher public key, hex")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *payloadPath == "" || *pubKey == "" {
		_, _ = fmt.Fprintln(stderr, "Usage: tat-server verify -payload <file> -pub <hex>")
		return 2
	}

	data, err := os.ReadFile(*payloadPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "verify: %v\n", err)
		return 1
	}
	var p envelope.SignedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		_, _ = fmt.Fprintf(stderr, "verify: malformed payload: %v\n", err)
		return 1
	}

	ok, err := envelope.Verify(&p, *pubKey)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "verify: %v\n", err)
		return 1
	}
	if !ok {
		_, _ = fmt.Fprintf(stdout, "FAILED: signature does not verify (key_id=%s, unsigned=%v)\n", p.KeyID, p.Unsigned)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "OK: payload %s verified (key_id=%s)\n", p.ID, p.KeyID)
	return 0
}

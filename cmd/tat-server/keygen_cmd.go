package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/levslove/tat-mcp-server/pkg/crypto"
)

// runKeygenCmd generates an Ed25519 signing keypair and writes the seed to
// a key file. The printed public key is what clients pin for verification.
func runKeygenCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "signing.key", "path to write the hex-encoded seed")
	keyID := fs.String("key-id", "tat-2026", "key identifier carried in signed payloads")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	signer, err := crypto.NewEd25519Signer(*keyID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "keygen: %v\n", err)
		return 1
	}
	if err := signer.WriteSeedFile(*out); err != nil {
		_, _ = fmt.Fprintf(stderr, "keygen: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "wrote signing key to %s\n", *out)
	_, _ = fmt.Fprintf(stdout, "key_id:     %s\n", *keyID)
	_, _ = fmt.Fprintf(stdout, "public_key: %s\n", signer.PublicKey())
	return 0
}

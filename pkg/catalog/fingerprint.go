package catalog

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Signature is the canonical text of everything that must match between host
// and firmware: widths, status codes and the ordered command layouts. Names
// of commands take part; descriptions do not.
func (c *Catalog) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "code %s\nstatus %s\nstartup %s\n", c.Protocol.Code, c.Protocol.Status, c.Protocol.Startup)
	fmt.Fprintf(&b, "enum %s ok=%s", c.Status.Name, c.Status.OK)
	for _, m := range c.Status.Members {
		fmt.Fprintf(&b, " %s=%d", m.Name, m.Code)
	}
	b.WriteByte('\n')
	for i, cmd := range c.Commands {
		fmt.Fprintf(&b, "%d %s %s -> %s\n", i, cmd.Name, cmd.Args, cmd.Returns)
	}
	return b.String()
}

// Fingerprint returns the first 8 bytes of the BLAKE2b-256 digest of
// Signature, hex encoded.
// Two catalogues with the same fingerprint speak the same wire protocol.
func (c *Catalog) Fingerprint() string {
	sum := blake2b.Sum256([]byte(c.Signature()))
	return hex.EncodeToString(sum[:8])
}

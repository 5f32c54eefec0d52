package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	fetch  bool
	qrFile string
)

var initStoreCmd = &cobra.Command{
	Use:   "init-store",
	Short: "Initialize the certificate store of the connected account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		hash, err := c.InitializeStore(ctx)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var certificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "List the certificates of the connected account",
	Long: `List the certificates last fetched by the server.

With --fetch they are read from the chain first.`,
	RunE: runCertificates,
}

var certificateCmd = &cobra.Command{
	Use:   "certificate <id>",
	Short: "Show a fetched certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		cert, err := c.Certificate(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cert)
	},
}

var qrCmd = &cobra.Command{
	Use:   "qr <id>",
	Short: "Save the verification QR code of a fetched certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		png, err := c.QRCode(ctx, args[0])
		if err != nil {
			return err
		}
		file := qrFile
		if file == "" {
			file = "certificate-" + args[0] + ".png"
		}
		if err = os.WriteFile(file, png, 0o644); err != nil {
			return err
		}
		fmt.Println(file)
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:       "share <twitter|linkedin>",
	Short:     "Print a link to share the connected account",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"twitter", "linkedin"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel := newClient(cmd)
		defer cancel()

		link, err := c.Share(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	},
}

func init() {
	certificatesCmd.Flags().BoolVarP(&fetch, "fetch", "f", false, "fetch the certificates from the chain")
	qrCmd.Flags().StringVarP(&qrFile, "output", "o", "", "png file to write, certificate-<id>.png by default")
}

func runCertificates(cmd *cobra.Command, args []string) error {
	c, ctx, cancel := newClient(cmd)
	defer cancel()

	get := c.Certificates
	if fetch {
		get = c.FetchCertificates
	}

	certs, err := get(ctx)
	if err != nil {
		return err
	}

	for _, cert := range certs {
		state := "valid"
		if cert.IsRevoked {
			state = "revoked"
		}
		issued := cert.IssuanceDate
		if t, err := cert.IssuedAt(); err == nil {
			issued = t.Format("2006-01-02")
		}
		fmt.Printf("%-6s %-30s %-20s %s %-7s %s\n", cert.ID, cert.CourseName, cert.IssuerName, issued, state, cert.VerifyURL)
	}
	if len(certs) == 0 {
		fmt.Println("no certificates")
	}
	return nil
}

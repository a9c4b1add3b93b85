package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/filex"
	"github.com/dmitrijs2005/newsinsight/internal/media"
	"github.com/dmitrijs2005/newsinsight/internal/netx"
	"github.com/dmitrijs2005/newsinsight/internal/wire"
)

// ErrUploadsUnsupported is returned when the backend cannot hand out
// upload targets.
var ErrUploadsUnsupported = errors.New("uploads need a remote backend (set -u and -k)")

// uploadRequester is implemented by backends that can presign uploads and
// downloads.
type uploadRequester interface {
	RequestUpload(ctx context.Context, req wire.UploadRequest) (wire.UploadTicket, *common.APIError, error)
	RequestDownload(ctx context.Context, key string) (wire.UploadTicket, *common.APIError, error)
}

func (a *App) uploads(ctx context.Context) (uploadRequester, error) {
	c, err := a.backendClient(ctx)
	if err != nil {
		return nil, err
	}
	up, ok := c.Backend.(uploadRequester)
	if !ok {
		return nil, ErrUploadsUnsupported
	}
	return up, nil
}

func (a *App) uploadCommand() *cobra.Command {
	var kind, contentType string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload verification evidence or an avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			up, err := a.uploads(ctx)
			if err != nil {
				return err
			}

			data, err := filex.ReadUpload(args[0])
			if err != nil {
				return err
			}
			if contentType == "" {
				contentType = detectContentType(args[0], data)
			}

			ticket, apiErr, err := up.RequestUpload(ctx, wire.UploadRequest{Kind: kind, ContentType: contentType})
			if err != nil {
				return err
			}
			if apiErr != nil {
				return apiErr
			}

			a.logger.Debug(ctx, "uploading", "key", ticket.Key, "bytes", len(data), "content_type", contentType)
			if err := netx.UploadToPresignedURL(ctx, a.httpClient, ticket.URL, contentType, bytes.NewReader(data)); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, ticket)
			}
			_, err = fmt.Fprintf(w, "Uploaded %s as %s\n", filepath.Base(args[0]), ticket.Key)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", media.KindVerification, "Upload kind: verification or avatar")
	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type (guessed from the file when empty)")
	return cmd
}

func (a *App) downloadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <key>",
		Short: "Print a presigned URL for an uploaded object, or save it with -o",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			up, err := a.uploads(ctx)
			if err != nil {
				return err
			}

			ticket, apiErr, err := up.RequestDownload(ctx, args[0])
			if err != nil {
				return err
			}
			if apiErr != nil {
				return apiErr
			}

			w := cmd.OutOrStdout()
			if output == "" {
				if a.jsonOutput {
					return printJSON(w, ticket)
				}
				_, err = fmt.Fprintln(w, ticket.URL)
				return err
			}

			n, err := saveDownload(ctx, a.httpClient, ticket.URL, output)
			if err != nil {
				return err
			}
			a.logger.Debug(ctx, "downloaded", "key", ticket.Key, "bytes", n, "path", output)
			_, err = fmt.Fprintf(w, "Saved %s to %s (%d bytes)\n", ticket.Key, output, n)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the object to this file instead of printing its URL")
	return cmd
}

// saveDownload writes the object to a temporary file next to path and
// renames it into place once complete.
func saveDownload(ctx context.Context, client *http.Client, url, path string) (int64, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return 0, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	n, err := netx.DownloadFromPresignedURL(ctx, client, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	return n, nil
}

func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

package sftp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/logger"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// Connector opens an SFTP session. The returned closer releases the transport.
type Connector func(ctx context.Context) (*sftp.Client, io.Closer, error)

// Uploader pushes ledger exports to the finance SFTP drop.
type Uploader struct {
	connect   Connector
	remoteDir string
}

func NewUploader(cfg config.SFTPConfig) *Uploader {
	return NewUploaderWithConnector(sshConnector(cfg), cfg.LedgerDir)
}

func NewUploaderWithConnector(connect Connector, remoteDir string) *Uploader {
	return &Uploader{connect: connect, remoteDir: remoteDir}
}

func sshConnector(cfg config.SFTPConfig) Connector {
	return func(ctx context.Context) (*sftp.Client, io.Closer, error) {
		sshConfig := &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
			Timeout:         15 * time.Second,
		}

		addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)
		conn, err := ssh.Dial("tcp", addr, sshConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to dial SSH: %w", err)
		}

		client, err := sftp.NewClient(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("failed to create SFTP client: %w", err)
		}
		return client, conn, nil
	}
}

// Upload streams r to <remoteDir>/<name>, creating the directory if needed.
// The file is written under a temporary name and renamed so readers never see a partial export.
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	client, transport, err := u.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Close()
		if transport != nil {
			_ = transport.Close()
		}
	}()

	if _, err := client.Stat(u.remoteDir); os.IsNotExist(err) {
		if err := client.MkdirAll(u.remoteDir); err != nil {
			return "", fmt.Errorf("failed to create directory on SFTP server: %w", err)
		}
	}

	finalPath := path.Join(u.remoteDir, name)
	tmpPath := finalPath + ".part"

	remoteFile, err := client.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("could not create remote file: %w", err)
	}
	written, err := remoteFile.ReadFrom(r)
	closeErr := remoteFile.Close()
	if err != nil {
		return "", fmt.Errorf("could not upload file to SFTP server: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("could not finalize remote file: %w", closeErr)
	}

	// Re-exports of the same window replace the previous file.
	if _, err := client.Stat(finalPath); err == nil {
		if err := client.Remove(finalPath); err != nil {
			return "", fmt.Errorf("failed to replace existing file: %w", err)
		}
	}
	if err := client.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	logger.CtxInfo(ctx, "Uploaded file to SFTP",
		zap.String("path", finalPath),
		zap.Int64("bytes", written),
	)
	return finalPath, nil
}

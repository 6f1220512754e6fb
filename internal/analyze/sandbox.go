package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/sirupsen/logrus"
)

// Sandbox runs the claude CLI inside a container with the repository
// bind-mounted at /workspace, so the analysis cannot touch anything outside
// the clone. AuthDir, when set, is mounted read-only where the CLI expects
// its credentials.
type Sandbox struct {
	Image   string
	AuthDir string
}

func (s *Sandbox) Name() string { return "sandbox" }

// Analyze writes the prompt into the repository (the only path visible to
// the container), runs `claude --print` against it, and captures demuxed
// container output. No interactive follow-up is possible in this mode.
func (s *Sandbox) Analyze(ctx context.Context, dir, prompt string, out io.Writer) (string, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return "", fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	if err := s.ensureImage(ctx, cli); err != nil {
		return "", err
	}

	promptFile := filepath.Join(dir, ".patchctl-sandbox-prompt.txt")
	if err := os.WriteFile(promptFile, []byte(prompt), 0o644); err != nil {
		return "", fmt.Errorf("writing prompt file: %w", err)
	}
	defer os.Remove(promptFile)

	mounts := []mount.Mount{
		{Type: mount.TypeBind, Source: dir, Target: "/workspace"},
	}
	if s.AuthDir != "" {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   s.AuthDir,
			Target:   "/home/agent/.claude",
			ReadOnly: true,
		})
	}

	created, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:      s.Image,
			WorkingDir: "/workspace",
			Entrypoint: []string{"/bin/sh"},
			Cmd:        []string{"-c", "claude --print < /workspace/.patchctl-sandbox-prompt.txt"},
			Labels:     map[string]string{"patchctl.review": "true"},
		},
		&container.HostConfig{Mounts: mounts},
		nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("creating container: %w", err)
	}
	defer func() {
		if err := cli.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true}); err != nil {
			logrus.Warnf("removing sandbox container: %v", err)
		}
	}()

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("starting container: %w", err)
	}

	statusCh, errCh := cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		return "", fmt.Errorf("waiting for container: %w", err)
	case status := <-statusCh:
		exitCode = status.StatusCode
	}

	logs, err := cli.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("reading container logs: %w", err)
	}
	defer logs.Close()

	var captured captureWriter
	w := io.MultiWriter(out, &captured)
	if _, err := stdcopy.StdCopy(w, w, logs); err != nil {
		return "", fmt.Errorf("demuxing container logs: %w", err)
	}

	if exitCode != 0 {
		return captured.String(), fmt.Errorf("sandboxed claude exited with code %d", exitCode)
	}
	return captured.String(), nil
}

func (s *Sandbox) ensureImage(ctx context.Context, cli *client.Client) error {
	images, err := cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", s.Image)),
	})
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	if len(images) > 0 {
		return nil
	}

	logrus.Infof("pulling sandbox image %s", s.Image)
	reader, err := cli.ImagePull(ctx, s.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", s.Image, err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	return err
}

type captureWriter struct {
	data []byte
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.data = append(c.data, p...)
	return len(p), nil
}

func (c *captureWriter) String() string { return string(c.data) }

package node

import (
	"context"
	"fmt"
	"io"

	"Netlab/api"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultImage    = "alpine:3.20"
	ContainerPrefix = "netlab-"
)

var ErrCommandFailed = errors.New("command failed")

// ContainerManager runs every host of the topology as a privileged
// container without networking of its own; links are plugged into its
// namespace afterwards.
type ContainerManager struct {
	dClient *client.Client
	image   string
}

func NewContainerManager(image string) (*ContainerManager, error) {
	dClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "error creating docker client")
	}
	if image == "" {
		image = DefaultImage
	}
	return &ContainerManager{
		dClient: dClient,
		image:   image,
	}, nil
}

// ContainerName is the docker name of the container backing node name.
func ContainerName(name string) string {
	return ContainerPrefix + name
}

// EnsureImage pulls ref unless it is already present.
func (cm *ContainerManager) EnsureImage(ctx context.Context, ref string) error {
	if _, _, err := cm.dClient.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	} else if !errdefs.IsNotFound(err) {
		return errors.Wrapf(err, "error inspecting image %s", ref)
	}
	log.Infof("pulling image %s", ref)
	rc, err := cm.dClient.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return errors.Wrapf(err, "error pulling image %s", ref)
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}

// AddNode creates and starts the container of n and records its network
// namespace path in n.NetNs.
func (cm *ContainerManager) AddNode(ctx context.Context, n *api.Node) error {
	if n.Image == "" {
		n.Image = cm.image
	}
	if err := cm.EnsureImage(ctx, n.Image); err != nil {
		return err
	}

	name := ContainerName(n.Name)
	_, err := cm.dClient.ContainerCreate(ctx, &container.Config{
		Image:           n.Image,
		Hostname:        n.Name,
		Cmd:             []string{"sleep", "infinity"},
		NetworkDisabled: true,
		User:            "root",
		Labels:          map[string]string{"netlab.node": n.Name, "netlab.role": string(n.Role)},
	}, &container.HostConfig{
		Privileged: true,
		Binds:      []string{},
	}, nil, nil, name)
	if err != nil {
		return errors.Wrapf(err, "error creating container for %s", n.Name)
	}

	if err = cm.dClient.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return errors.Wrapf(err, "error starting container for %s", n.Name)
	}

	res, err := cm.dClient.ContainerInspect(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "error inspecting container for %s", n.Name)
	}
	n.NetNs = fmt.Sprintf("/proc/%d/ns/net", res.State.Pid)
	log.Debugf("node %s: netns %s", n.Name, n.NetNs)
	return nil
}

// Exec runs argv inside the node and copies its output to stdout and
// stderr. A non-zero exit status is reported as ErrCommandFailed.
func (cm *ContainerManager) Exec(ctx context.Context, name string, argv []string, stdout, stderr io.Writer) error {
	resp, err := cm.dClient.ContainerExecCreate(ctx, ContainerName(name), container.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return errors.Wrapf(err, "error creating exec in %s", name)
	}

	att, err := cm.dClient.ContainerExecAttach(ctx, resp.ID, container.ExecAttachOptions{})
	if err != nil {
		return errors.Wrapf(err, "error attaching to exec in %s", name)
	}
	defer att.Close()
	if _, err = stdcopy.StdCopy(stdout, stderr, att.Reader); err != nil {
		return errors.Wrapf(err, "error reading output of %s", name)
	}

	inspect, err := cm.dClient.ContainerExecInspect(ctx, resp.ID)
	if err != nil {
		return errors.Wrapf(err, "error inspecting exec in %s", name)
	}
	if inspect.ExitCode != 0 {
		return errors.Wrapf(ErrCommandFailed, "%s: %v exited with status %d", name, argv, inspect.ExitCode)
	}
	return nil
}

func (cm *ContainerManager) DeleteNode(ctx context.Context, name string) error {
	err := cm.dClient.ContainerRemove(ctx, ContainerName(name), container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		return errors.Wrapf(err, "error removing container for %s", name)
	}
	return nil
}

func (cm *ContainerManager) Close() error {
	return cm.dClient.Close()
}

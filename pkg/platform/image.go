package platform

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"
	"mlship.io/mlship/pkg/errors"
)

var CreationPollInterval = 5 * time.Second

type remoteImage struct {
	client    *Client
	name      string
	operation string
}

func (i *remoteImage) Name() string {
	return i.name
}

// WaitForCreation blocks until the platform reports the creation operation
// finished. A failed operation surfaces as an IMAGE_BUILD_FAILED error;
// cancellation of ctx aborts the wait.
func (i *remoteImage) WaitForCreation(ctx context.Context) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("image", i.name, "operation", i.operation)
	return wait.PollImmediateUntilWithContext(ctx, CreationPollInterval, func(ctx context.Context) (bool, error) {
		operation, err := i.client.Remote.GetOperation(ctx, i.client.Workspace, i.operation)
		if err != nil {
			return false, err
		}
		switch operation.State {
		case OperationStateSucceeded:
			log.Info("image creation succeeded")
			return true, nil
		case OperationStateFailed:
			return false, errors.NewImageBuildFailedError(i.name, operation.Message)
		default:
			log.V(1).Info("image creation in progress", "state", operation.State)
			return false, nil
		}
	})
}

package service

import (
	"context"
	"time"

	"roomhub/internal/models"
)

// CommandSender performs one synchronous outbound command call.
type CommandSender interface {
	SendCommand(ctx context.Context, address string, cmd DispatchCommand) error
}

// AsyncDispatcher fires commands in the background with a bounded timeout.
// Failures are logged by Tasks and never reach the caller.
type AsyncDispatcher struct {
	sender  CommandSender
	tasks   *Tasks
	timeout time.Duration
}

func NewAsyncDispatcher(sender CommandSender, tasks *Tasks, timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{sender: sender, tasks: tasks, timeout: timeout}
}

// Dispatch skips rooms without an address.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, room models.Room, cmd DispatchCommand) {
	if !room.HasAddress() {
		return
	}
	d.tasks.Go(ctx, "dispatch", d.timeout, func(ctx context.Context) error {
		return d.sender.SendCommand(ctx, room.Address, cmd)
	}, "room_id", room.ID, "device_id", cmd.DeviceID, "command", cmd.Command, "duration", cmd.Duration)
}

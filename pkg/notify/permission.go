package notify

import (
	"context"
)

// Permission is the state of the system notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Permissioner asks the environment for permission to show system notifications.
type Permissioner interface {
	RequestPermission(ctx context.Context) Permission
}

// PermissionFunc adapts a callback-style requester. The callback reports
// whether permission was granted.
type PermissionFunc func(callback func(granted bool))

// RequestPermission invokes f and waits for its callback or ctx.
func (f PermissionFunc) RequestPermission(ctx context.Context) Permission {
	if f == nil {
		return PermissionDenied
	}

	result := make(chan bool, 1)
	go f(func(granted bool) {
		select {
		case result <- granted:
		default:
		}
	})

	select {
	case granted := <-result:
		if granted {
			return PermissionGranted
		}
		return PermissionDenied
	case <-ctx.Done():
		return PermissionDefault
	}
}

// requestPermission treats a missing permissioner as a permanently denied environment.
func requestPermission(ctx context.Context, p Permissioner) Permission {
	if p == nil {
		return PermissionDenied
	}
	return p.RequestPermission(ctx)
}

//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

void setDockVisible(int visible) {
    NSApplicationActivationPolicy policy = visible ? NSApplicationActivationPolicyRegular : NSApplicationActivationPolicyAccessory;
    [NSApp setActivationPolicy:policy];
}

int isAppActive() {
    return [NSApp isActive] ? 1 : 0;
}

void activateApp() {
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"

// SetDockVisible shows the Dock icon while a window is open and hides it when
// the app lives only in the menu bar.
func SetDockVisible(visible bool) {
	v := C.int(0)
	if visible {
		v = 1
	}
	C.setDockVisible(v)
}

// IsAppActive reports whether the app has keyboard focus.
func IsAppActive() bool {
	return C.isAppActive() == 1
}

// ActivateApp brings the app in front of other applications.
func ActivateApp() {
	C.activateApp()
}

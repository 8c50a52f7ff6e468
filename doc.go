// Package wiipad is a user-space driver for Wii Remotes, Nunchuks,
// Classic/Classic Pro Controllers, Wii U Pro Controllers and Wii Balance
// Boards connected over classic Bluetooth.
//
// A Manager owns the Bluetooth command queue, the frame receiver, and
// the player-LED allocator. Connecting a controller (by address,
// discovered through any Bluetooth stack of the caller's choosing —
// discovery itself is out of scope here) runs the status/extension
// detection/reporting-mode sequence and synthesizes one or more
// /dev/uinput gamepads the rest of the OS sees as ordinary joysticks.
//
// USAGE
//
//	profile := mapping.Profile{ /* ... */ }
//	mgr, err := wiipad.NewManager(wiipad.WithProfile(&profile))
//	if err != nil {
//		log.Fatal(err)
//	}
//	mgr.OnDisconnect(func(s *wiipad.Session) {
//		log.Printf("%s disconnected", s.PrettyName())
//	})
//	sess, err := mgr.Connect("00:1F:C5:00:00:01", "Nintendo RVL-CNT-01")
//
// STATUS
//
// Linux only, classic Bluetooth (BR/EDR) L2CAP sockets via
// golang.org/x/sys/unix. Pairing/discovery and force-feedback payload
// synthesis are not implemented; see SPEC_FULL.md's Non-goals.
package wiipad

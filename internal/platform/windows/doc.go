// Package windows provides the Win32 backend: GDI screen capture, a
// borderless topmost output window, cursor and foreground-window
// readers, and monitor enumeration. The process is switched to
// per-monitor DPI awareness at registration so every coordinate the
// OS hands us is a physical pixel.
//
// On other operating systems the package compiles empty.
package windows

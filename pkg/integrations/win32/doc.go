// Package win32 implements the window table and the file version reader
// over the Win32 API. It only builds on Windows.
package win32

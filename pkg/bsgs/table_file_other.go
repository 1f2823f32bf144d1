//go:build !windows

package bsgs

// hideFile is a no-op; dotfiles are the convention outside Windows.
func hideFile(string) {}

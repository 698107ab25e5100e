//go:build !linux

package cuvid

import "github.com/user/heiftile/pkg/hwsession"

func load() error {
	return ErrPlatformNotSupported
}

func openDevice(ordinal int) (hwsession.Device, error) {
	return nil, ErrPlatformNotSupported
}

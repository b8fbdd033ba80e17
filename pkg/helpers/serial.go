/*
Zaparoo MacroPad
Copyright (c) 2026 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo MacroPad.

Zaparoo MacroPad is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo MacroPad is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo MacroPad.  If not, see <http://www.gnu.org/licenses/>.
*/

package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/ZaparooProject/macropad/pkg/config"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// swapped in tests
var (
	portsList         = serial.GetPortsList
	detailedPortsList = enumerator.GetDetailedPortsList
)

func listDevDir(path string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", path, err)
	}

	devices := make([]string, 0, len(entries))
	for _, v := range entries {
		if v.IsDir() {
			continue
		}
		if !strings.HasPrefix(v.Name(), "ttyUSB") && !strings.HasPrefix(v.Name(), "ttyACM") {
			continue
		}
		devices = append(devices, filepath.Join(path, v.Name()))
	}

	return devices, nil
}

func filterPrefix(ports []string, prefixes ...string) []string {
	var devices []string
	for _, v := range ports {
		for _, p := range prefixes {
			if strings.HasPrefix(v, p) {
				devices = append(devices, v)
				break
			}
		}
	}
	return devices
}

// listUSB returns ports whose USB vendor and product IDs match. An empty
// vid or pid matches anything.
func listUSB(vid, pid string) ([]string, error) {
	details, err := detailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate usb serial ports: %w", err)
	}

	var devices []string
	for _, d := range details {
		if !d.IsUSB {
			continue
		}
		if vid != "" && !strings.EqualFold(d.VID, vid) {
			continue
		}
		if pid != "" && !strings.EqualFold(d.PID, pid) {
			continue
		}
		log.Debug().Msgf("usb serial match: %s (%s:%s %s)", d.Name, d.VID, d.PID, d.Product)
		devices = append(devices, d.Name)
	}
	return devices, nil
}

// GetSerialDeviceList returns candidate endpoints for the device, in the
// order they should be tried. An explicit port list in the config wins,
// then a USB VID/PID filter, then the platform's usual serial device names.
// The result is sorted so the try order is stable across cycles.
//
//nolint:gocritic // device config copied by value
func GetSerialDeviceList(dev config.Device) ([]string, error) {
	if len(dev.Ports) > 0 {
		return slices.Clone(dev.Ports), nil
	}

	var devices []string
	var err error

	switch {
	case dev.VID != "" || dev.PID != "":
		devices, err = listUSB(dev.VID, dev.PID)
	case runtime.GOOS == "linux":
		devices, err = listDevDir("/dev")
	default:
		var ports []string
		ports, err = portsList()
		if err != nil {
			return nil, fmt.Errorf("failed to get serial ports list: %w", err)
		}
		switch runtime.GOOS {
		case "darwin":
			devices = filterPrefix(ports, "/dev/tty.usbserial", "/dev/tty.usbmodem", "/dev/cu.usbmodem")
		case "windows":
			devices = filterPrefix(ports, "COM")
		default:
			devices = ports
		}
	}
	if err != nil {
		return nil, err
	}

	slices.Sort(devices)
	return devices, nil
}

package sim

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialSource reads commands from a serial button box or console that sends
// the same n, p and q keys as the keyboard
type SerialSource struct {
	*ChannelSource
	port serial.Port
}

// OpenSerialSource opens portName at baudRate, 8N1
func OpenSerialSource(portName string, baudRate int) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialSource{
		ChannelSource: NewReaderSource(port),
		port:          port,
	}, nil
}

// Close closes the serial port, which also stops the reader goroutine
func (s *SerialSource) Close() error {
	return s.port.Close()
}

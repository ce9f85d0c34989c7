package ref

import "os"

// Console writes kernel log lines to a file descriptor, standing in for
// the bare-metal platform's raw UART/VGA console writer.
type Console struct {
	fd *os.File
}

// NewConsole wraps fd (os.Stdout in the reference environment; a raw UART
// write in a bare-metal build) as a platform.Console.
func NewConsole(fd *os.File) *Console {
	return &Console{fd: fd}
}

func (c *Console) Write(msg string) {
	c.fd.WriteString(msg)
}

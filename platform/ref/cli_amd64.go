package ref

// disableInterrupts and enableInterrupts are implemented in cli_amd64.s.
func disableInterrupts()
func enableInterrupts()

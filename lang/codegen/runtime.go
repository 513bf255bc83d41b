package codegen

// pushRegister/pushRegisters and popRegisterLCL/popRegistersLCL are the two
// small idioms save_stack/pop_stack repeat for each of the four pointer
// segments they save and restore.
func pushRegister(address string) []string {
	return []string{address, "D=M", "@SP", "AM=M+1", "A=A-1", "M=D"}
}

func pushRegisters(addresses ...string) []string {
	var out []string
	for _, a := range addresses {
		out = append(out, pushRegister(a)...)
	}
	return out
}

func popRegisterLCL(address string) []string {
	return []string{"@LCL", "AM=M-1", "D=M", address, "M=D"}
}

func popRegistersLCL(addresses ...string) []string {
	var out []string
	for _, a := range addresses {
		out = append(out, popRegisterLCL(a)...)
	}
	return out
}

// saveStack is the shared handshake every call (and function-ext's implicit
// self-call) jumps to: push the return address and the caller's four
// pointer segments, then re-point ARG/LCL at the callee's fresh frame. R13
// carries the return address in, R14 the frame size (5+nargs), R15 the
// function's entry address.
func saveStack() []string {
	return append(append([]string{
		"(save_stack)",
		"@R15", "M=D",
		"@R13", "D=M", "@SP", "AM=M+1", "A=A-1", "M=D",
	}, pushRegisters("@LCL", "@ARG", "@THIS", "@THAT")...),
		"@SP", "D=M", "@R14", "D=D-M", "@ARG", "M=D",
		"@SP", "D=M", "@LCL", "M=D",
		"@R15", "A=M", "0; JMP",
	)
}

// popStack is every return's shared landing pad: move the single return
// value down to the caller's ARG 0, restore SP/THAT/THIS/ARG/LCL from the
// callee's frame, then jump back to the saved return address.
func popStack() []string {
	return append(append([]string{
		"(pop_stack)",
		"@LCL", "D=M", "@5", "A=D-A", "D=M", "@R13", "M=D",
		"@SP", "A=M-1", "D=M", "@ARG", "A=M", "M=D", "D=A+1", "@SP", "M=D",
	}, popRegistersLCL("@THAT", "@THIS", "@ARG", "@LCL")...),
		"@R13", "A=M", "0; JMP",
	)
}

// initVM is the directory-mode bootstrap (spec §6): point SP at 256, jump
// into Sys.init, then lay down save_stack/pop_stack exactly once so every
// call/return in the program can reach them.
func (e *emitter) initVM() []string {
	return append([]string{
		"@256", "D=A", "@SP", "M=D",
		e.functionCallAddress("Sys.init"), "0; JMP",
	}, append(saveStack(), popStack()...)...)
}

package host

// Minimal wasm binary encoder for test canisters.

const (
	valI32 = 0x7f
	valI64 = 0x7e

	opCall     = 0x10
	opDrop     = 0x1a
	opI32Const = 0x41
	opI64Const = 0x42
	opEnd      = 0x0b
)

// hostImport is an ic0 function the test canister imports.
type hostImport struct {
	name    string
	params  []byte
	results []byte
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func wasmVec(items ...[]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func wasmSection(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(payload)))...)
	return append(out, payload...)
}

// i64 returns the instruction pushing v as an i64 constant.
func i64(v uint64) []byte {
	return append([]byte{opI64Const}, sleb(int64(v))...)
}

// i32 returns the instruction pushing v as an i32 constant.
func i32(v uint32) []byte {
	return append([]byte{opI32Const}, sleb(int64(int32(v)))...)
}

// callImport returns the instruction calling the idx-th import.
func callImport(idx int) []byte {
	return append([]byte{opCall}, uleb(uint64(idx))...)
}

func instrs(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// canisterModule builds a module importing imports from ic0 and exporting
// one function named export with the given instructions as its body, plus
// one page of memory holding data at address 0.
func canisterModule(imports []hostImport, export string, body, data []byte) []byte {
	types := make([][]byte, 0, len(imports)+1)
	entries := make([][]byte, 0, len(imports))
	for i, imp := range imports {
		types = append(types, instrs([]byte{0x60}, wasmVec(bytesOf(imp.params)...), wasmVec(bytesOf(imp.results)...)))
		entries = append(entries, instrs(wasmName("ic0"), wasmName(imp.name), []byte{0x00}, uleb(uint64(i))))
	}
	entryType := len(types)
	types = append(types, []byte{0x60, 0x00, 0x00})
	fn := len(imports)

	code := instrs([]byte{0x00}, body, []byte{opEnd})
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, wasmSection(1, wasmVec(types...))...)
	mod = append(mod, wasmSection(2, wasmVec(entries...))...)
	mod = append(mod, wasmSection(3, wasmVec(uleb(uint64(entryType))))...)
	mod = append(mod, wasmSection(5, wasmVec([]byte{0x00, 0x01}))...)
	mod = append(mod, wasmSection(7, wasmVec(
		instrs(wasmName(export), []byte{0x00}, uleb(uint64(fn))),
		instrs(wasmName("memory"), []byte{0x02, 0x00}),
	))...)
	mod = append(mod, wasmSection(10, wasmVec(instrs(uleb(uint64(len(code))), code)))...)
	if len(data) > 0 {
		mod = append(mod, wasmSection(11, wasmVec(instrs([]byte{0x00}, i32(0), []byte{opEnd}, wasmName(string(data)))))...)
	}
	return mod
}

func bytesOf(vals []byte) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte{v}
	}
	return out
}

package host

import (
	"context"
	"testing"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pingModule builds a canister exporting "canister_query ping" whose body is
// the given code section. The module imports msg_reply_data_append (func 0)
// and msg_reply (func 1) and holds "pong" at address 0.
func pingModule(code []byte) []byte {
	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		// types: (i32, i32) -> (), () -> ()
		0x01, 0x09, 0x02, 0x60, 0x02, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00,
		// imports
		0x02, 0x2d, 0x02,
		0x03, 'i', 'c', '0',
		0x15, 'm', 's', 'g', '_', 'r', 'e', 'p', 'l', 'y', '_', 'd', 'a', 't', 'a', '_', 'a', 'p', 'p', 'e', 'n', 'd',
		0x00, 0x00,
		0x03, 'i', 'c', '0',
		0x09, 'm', 's', 'g', '_', 'r', 'e', 'p', 'l', 'y',
		0x00, 0x01,
		// one function of type 1
		0x03, 0x02, 0x01, 0x01,
		// one page of memory
		0x05, 0x03, 0x01, 0x00, 0x01,
		// exports
		0x07, 0x20, 0x02,
		0x13, 'c', 'a', 'n', 'i', 's', 't', 'e', 'r', '_', 'q', 'u', 'e', 'r', 'y', ' ', 'p', 'i', 'n', 'g', 0x00, 0x02,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	mod = append(mod, code...)
	// data: "pong" at 0
	return append(mod, 0x0b, 0x0a, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x04, 'p', 'o', 'n', 'g')
}

var (
	// msg_reply_data_append(0, 4); msg_reply()
	replyPong = []byte{0x0a, 0x0c, 0x01, 0x0a, 0x00, 0x41, 0x00, 0x41, 0x04, 0x10, 0x00, 0x10, 0x01, 0x0b}
	// msg_reply(); msg_reply()
	replyTwice = []byte{0x0a, 0x08, 0x01, 0x06, 0x00, 0x10, 0x01, 0x10, 0x01, 0x0b}
)

func load(t *testing.T, code []byte) (*Executor, *Instance) {
	t.Helper()
	return loadModule(t, pingModule(code))
}

func loadModule(t *testing.T, wasm []byte) (*Executor, *Instance) {
	t.Helper()
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })

	inst, err := e.Load(ctx, wasm)
	require.NoError(t, err)
	return e, inst
}

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	r := ictest.NewReplica()
	e, err := NewExecutor(ctx, WithReplica(r))
	require.NoError(t, err)
	assert.Same(t, r, e.Replica())
	assert.NoError(t, e.Close(ctx))
}

func TestExecutor_PingPong(t *testing.T) {
	_, inst := load(t, replyPong)
	ctx := context.Background()

	assert.Equal(t, []string{"query ping"}, inst.Methods())

	resp, err := inst.Query(ctx, "ping", nil, entities.Principal{0x04})
	require.NoError(t, err)
	require.True(t, resp.Replied)
	assert.Equal(t, []byte("pong"), resp.Reply)
	assert.False(t, resp.Trapped)
}

func TestExecutor_MissingMethod(t *testing.T) {
	_, inst := load(t, replyPong)
	ctx := context.Background()

	_, err := inst.Query(ctx, "pong", nil, nil)
	assert.ErrorContains(t, err, `no query method "pong"`)

	_, err = inst.Update(ctx, "ping", nil, nil)
	assert.Error(t, err, "ping is only exported as a query")
}

func TestExecutor_HostTrapSurfaces(t *testing.T) {
	_, inst := load(t, replyTwice)

	resp, err := inst.Query(context.Background(), "ping", nil, nil)
	require.NoError(t, err)
	assert.True(t, resp.Trapped)
	assert.Equal(t, "msg_reply: message already terminated", resp.TrapMessage)
}

func TestExecutor_OptionalSystemExports(t *testing.T) {
	_, inst := load(t, replyPong)
	ctx := context.Background()

	resp := inst.Init(ctx, []byte("cfg"))
	assert.Equal(t, ictest.Response{}, resp)

	_, ok := inst.Heartbeat(ctx)
	assert.False(t, ok)
	_, ok = inst.GlobalTimer(ctx)
	assert.False(t, ok)
}

func TestExecutor_NotifyDeliveryIsNoop(t *testing.T) {
	_, inst := load(t, replyPong)
	c := &ictest.PendingCall{ReplyFun: ictest.NoContinuation, RejectFun: ictest.NoContinuation}

	resp, err := inst.DeliverReply(context.Background(), c, []byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, ictest.Response{}, resp)
	assert.True(t, c.Completed)
}

func TestExecutor_CallbackExportRequired(t *testing.T) {
	_, inst := load(t, replyPong)
	c := &ictest.PendingCall{ReplyFun: 1, ReplyEnv: 1, RejectFun: 2, RejectEnv: 1}

	_, err := inst.DeliverReject(context.Background(), c, entities.RejectSysTransient, "timeout")
	assert.ErrorContains(t, err, "canister_callback_reject")
}

var (
	stableGrow  = hostImport{name: "stable64_grow", params: []byte{valI64}, results: []byte{valI64}}
	stableWrite = hostImport{name: "stable64_write", params: []byte{valI64, valI64, valI64}}
	stableRead  = hostImport{name: "stable64_read", params: []byte{valI64, valI64, valI64}}
	argDataCopy = hostImport{name: "msg_arg_data_copy", params: []byte{valI32, valI32, valI32}}
)

// runUpdate loads a canister exporting "canister_update run" and calls it.
func runUpdate(t *testing.T, imports []hostImport, body, data, arg []byte) (*Executor, *Instance, ictest.Response) {
	t.Helper()
	e, inst := loadModule(t, canisterModule(imports, "canister_update run", body, data))
	resp, err := inst.Update(context.Background(), "run", arg, entities.Principal{0x04})
	require.NoError(t, err)
	return e, inst, resp
}

func TestExecutor_StableRoundTrip(t *testing.T) {
	body := instrs(
		i64(1), callImport(0), []byte{opDrop},
		i64(8), i64(0), i64(4), callImport(1), // stable[8:12] = mem[0:4]
		i64(100), i64(8), i64(4), callImport(2), // mem[100:104] = stable[8:12]
	)
	e, inst, resp := runUpdate(t, []hostImport{stableGrow, stableWrite, stableRead}, body, []byte("pong"), nil)
	require.False(t, resp.Trapped, resp.TrapMessage)

	buf := make([]byte, 4)
	e.Replica().Stable64Read(buf, 8)
	assert.Equal(t, []byte("pong"), buf)

	got, ok := inst.module.Memory().Read(100, 4)
	require.True(t, ok)
	assert.Equal(t, []byte("pong"), got)
}

func TestExecutor_StableRangeChecked(t *testing.T) {
	tests := []struct {
		name   string
		access []byte
		want   string
	}{
		{
			name:   "write size beyond 32 bits",
			access: instrs(i64(0), i64(0), i64(0x1_0000_0004), callImport(1)),
			want:   "stable64_write: guest range [0, +4294967300) exceeds 32-bit memory",
		},
		{
			name:   "write source beyond 32 bits",
			access: instrs(i64(0), i64(0x1_0000_0000), i64(1), callImport(1)),
			want:   "stable64_write: guest range [4294967296, +1) exceeds 32-bit memory",
		},
		{
			name:   "read size beyond 32 bits",
			access: instrs(i64(0), i64(0), i64(1<<40), callImport(2)),
			want:   "stable64_read: guest range [0, +1099511627776) exceeds 32-bit memory",
		},
		{
			name:   "read past stable memory",
			access: instrs(i64(0), i64(0x10000), i64(0x100), callImport(2)),
			want:   "stable64_read: range [65536, +256) exceeds 65536",
		},
		{
			name:   "read into missing guest memory",
			access: instrs(i64(0xFFF0), i64(0), i64(0x100), callImport(2)),
			want:   "stable64_read: guest range [65520, +256) outside memory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := instrs(i64(1), callImport(0), []byte{opDrop}, tt.access)
			e, _, resp := runUpdate(t, []hostImport{stableGrow, stableWrite, stableRead}, body, nil, nil)
			require.True(t, resp.Trapped)
			assert.Equal(t, tt.want, resp.TrapMessage)
			assert.Equal(t, uint64(1), e.Replica().StablePages())
		})
	}
}

func TestExecutor_CopyLengthChecked(t *testing.T) {
	tests := []struct {
		name   string
		access []byte
		want   string
	}{
		{
			name:   "length beyond source",
			access: instrs(i32(0), i32(0), i32(0xFFFF_FFF0), callImport(0)),
			want:   "msg_arg_data_copy: range [0, 4294967280) exceeds size 2",
		},
		{
			name:   "destination outside memory",
			access: instrs(i32(0x10000), i32(0), i32(2), callImport(0)),
			want:   "msg_arg_data_copy: guest range [65536, +2) outside memory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, resp := runUpdate(t, []hostImport{argDataCopy}, tt.access, nil, []byte("hi"))
			require.True(t, resp.Trapped)
			assert.Equal(t, tt.want, resp.TrapMessage)
		})
	}
}

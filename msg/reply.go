package msg

import (
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	sdkerrors "github.com/reglet-dev/canister-sdk/go/domain/errors"
)

func (c *Context) checkTerminal(op string) error {
	if err := c.checkKind(op, c.CanReply()); err != nil {
		return err
	}
	if c.call.replied {
		return sdkerrors.Protocol(op, sdkerrors.ErrAlreadyReplied)
	}
	return nil
}

// AppendReply adds b to the reply being assembled. It may be called any
// number of times before Reply.
func (c *Context) AppendReply(b []byte) error {
	if err := c.checkTerminal("reply_data_append"); err != nil {
		return err
	}
	if len(b) > 0 {
		c.api.MsgReplyDataAppend(b)
	}
	return nil
}

// Reply commits the appended bytes as the successful response.
func (c *Context) Reply() error {
	if err := c.checkTerminal("reply"); err != nil {
		return err
	}
	c.call.replied = true
	c.api.MsgReply()
	return nil
}

// ReplyWith appends b and replies.
func (c *Context) ReplyWith(b []byte) error {
	if err := c.AppendReply(b); err != nil {
		return err
	}
	return c.Reply()
}

// Reject rejects the message with message. Bytes appended so far are
// discarded by the host.
func (c *Context) Reject(message string) error {
	if err := c.checkTerminal("reject"); err != nil {
		return err
	}
	c.call.replied = true
	c.api.MsgReject([]byte(message))
	return nil
}

// Replied reports whether Reply or Reject has been issued for the message,
// in this execution or an earlier one of the same call context.
func (c *Context) Replied() bool {
	return c.call.replied
}

// CanReply reports whether this execution may still answer a caller. A
// continuation of a call made from a system task has nobody to answer.
func (c *Context) CanReply() bool {
	return c.scope.Kind.CanReply() && c.call.origin.CanReply()
}

// AcceptMessage accepts an ingress message during inspection. It may be
// called once, and only from canister_inspect_message.
func (c *Context) AcceptMessage() error {
	if err := c.checkKind("accept_message", c.scope.Kind == entities.KindInspect); err != nil {
		return err
	}
	if c.accepted {
		return sdkerrors.Protocol("accept_message", sdkerrors.ErrAlreadyReplied)
	}
	c.accepted = true
	c.api.AcceptMessage()
	return nil
}

// Accepted reports whether AcceptMessage has been issued.
func (c *Context) Accepted() bool {
	return c.accepted
}

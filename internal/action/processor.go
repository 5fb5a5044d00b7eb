// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package action

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/util"
)

// Draft is an unsigned transaction that adds one access key to SignerID's
// own account.
type Draft struct {
	Network  string
	SignerID near.AccountID
	Action   *AddAccessKeyAction
}

// MarshalJSON renders the draft as transaction JSON. Add-key actions
// always target the signer's own account.
func (d *Draft) MarshalJSON() ([]byte, error) {
	actions := []*AddAccessKeyAction{}
	if d.Action != nil {
		actions = append(actions, d.Action)
	}
	return json.Marshal(struct {
		SignerID   string                `json:"signer_id"`
		ReceiverID string                `json:"receiver_id"`
		Actions    []*AddAccessKeyAction `json:"actions"`
	}{
		SignerID:   d.SignerID.String(),
		ReceiverID: d.SignerID.String(),
		Actions:    actions,
	})
}

// Processor handles a resolved action for one permission kind.
type Processor func(ctx context.Context, action *AddAccessKeyAction, draft *Draft, out io.Writer) error

var processors = util.NewOrderedRegistry[Processor]()

func init() {
	processors.MustSet(KindFunctionCall.String(), processFunctionCall)
	processors.MustSet(KindFullAccess.String(), processFullAccess)
}

// RegisterProcessor adds a processor for kind. It returns false if one is
// already registered.
func RegisterProcessor(kind PermissionKind, p Processor) bool {
	return processors.Set(kind.String(), p)
}

// Process dispatches action to the processor registered for its
// permission kind.
func Process(ctx context.Context, action *AddAccessKeyAction, draft *Draft, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kind := action.Permission().Kind()
	proc, ok := processors.Get(kind.String())
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, kind)
	}
	util.Debug("processing add-key action", "kind", kind.String(), "public_key", action.PublicKey().String(), "signer", draft.SignerID)
	return proc(ctx, action, draft, out)
}

func processFullAccess(_ context.Context, action *AddAccessKeyAction, draft *Draft, out io.Writer) error {
	draft.Action = action
	if _, err := fmt.Fprintf(out, "Adding access key %s to %s with full access (nonce: %d)\n",
		action.PublicKey(), draft.SignerID, action.Nonce()); err != nil {
		return err
	}
	return writeDraft(out, draft)
}

func processFunctionCall(_ context.Context, action *AddAccessKeyAction, draft *Draft, out io.Writer) error {
	draft.Action = action
	if _, err := fmt.Fprintf(out, "Adding access key %s to %s that can %s (nonce: %d)\n",
		action.PublicKey(), draft.SignerID, action.Permission(), action.Nonce()); err != nil {
		return err
	}
	return writeDraft(out, draft)
}

func writeDraft(out io.Writer, draft *Draft) error {
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	_, err = fmt.Fprintf(out, "\nUnsigned transaction:\n%s\n", data)
	return err
}

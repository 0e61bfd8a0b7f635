package service

import (
	"context"
	"testing"

	"contact_system/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneService_CRUD(t *testing.T) {
	conn := setupDB(t)
	owner := createUser(t, conn, "ada")
	contact := createContact(t, conn, owner.ID, "Ada")
	svc := NewPhoneService(conn)
	ctx := context.Background()

	phone, err := svc.Create(ctx, owner.ID, contact.ID, PhoneInput{Number: " +1 (555) 010-0100 ", NumberType: strPtr("mobile")})
	require.NoError(t, err)
	assert.Equal(t, "+1 (555) 010-0100", phone.Number)
	assert.Equal(t, "mobile", *phone.NumberType)
	assert.Equal(t, contact.ID, phone.ContactID)

	got, err := svc.Get(ctx, owner.ID, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, phone.Number, got.Number)

	updated, err := svc.Update(ctx, owner.ID, phone.ID, PhoneInput{Number: "555-0199"})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Number)
	assert.Nil(t, updated.NumberType)

	list, err := svc.List(ctx, owner.ID, &contact.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "555-0199", list[0].Number)

	require.NoError(t, svc.Delete(ctx, owner.ID, phone.ID))
	_, err = svc.Get(ctx, owner.ID, phone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhoneService_Patch(t *testing.T) {
	conn := setupDB(t)
	owner := createUser(t, conn, "ada")
	from := createContact(t, conn, owner.ID, "From")
	to := createContact(t, conn, owner.ID, "To")
	svc := NewPhoneService(conn)
	ctx := context.Background()
	phone, err := svc.Create(ctx, owner.ID, from.ID, PhoneInput{Number: "555-0100", NumberType: strPtr("work")})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, owner.ID, phone.ID, PhonePatch{Number: strPtr("555-0199")})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", patched.Number)
	require.NotNil(t, patched.NumberType)
	assert.Equal(t, "work", *patched.NumberType)

	patched, err = svc.Patch(ctx, owner.ID, phone.ID, PhonePatch{NumberType: strPtr(""), ContactID: &to.ID})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", patched.Number)
	assert.Nil(t, patched.NumberType)
	assert.Equal(t, to.ID, patched.ContactID)

	_, err = svc.Patch(ctx, owner.ID, phone.ID, PhonePatch{Number: strPtr("abc")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "number")
}

func TestPhoneService_ForbiddenForNonOwner(t *testing.T) {
	conn := setupDB(t)
	alice := createUser(t, conn, "alice")
	bob := createUser(t, conn, "bob")
	contact := createContact(t, conn, alice.ID, "Carol", "555-0100")
	svc := NewPhoneService(conn)
	ctx := context.Background()

	phones, err := svc.List(ctx, alice.ID, &contact.ID)
	require.NoError(t, err)
	require.Len(t, phones, 1)
	phoneID := phones[0].ID

	_, err = svc.Get(ctx, bob.ID, phoneID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, bob.ID, phoneID, PhoneInput{Number: "555-0000"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, phoneID), ErrForbidden)

	_, err = svc.Create(ctx, bob.ID, contact.ID, PhoneInput{Number: "555-0000"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.List(ctx, bob.ID, &contact.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, alice.ID, phoneID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Number)
}

func TestPhoneService_NotFound(t *testing.T) {
	conn := setupDB(t)
	owner := createUser(t, conn, "ada")
	svc := NewPhoneService(conn)
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, uuid.New(), PhoneInput{Number: "555-0100"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, owner.ID, uuid.New()), ErrNotFound)
}

func TestPhoneService_Validation(t *testing.T) {
	conn := setupDB(t)
	owner := createUser(t, conn, "ada")
	contact := createContact(t, conn, owner.ID, "Ada")
	svc := NewPhoneService(conn)

	for _, number := range []string{"", "   ", "call me", "12", "+1 555 12345678901234"} {
		_, err := svc.Create(context.Background(), owner.ID, contact.ID, PhoneInput{Number: number})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, number)
		assert.Contains(t, verr.Fields, "number")
	}
	assert.Zero(t, count(t, conn, &domain.Phone{}))
}

func TestPhoneService_MoveBetweenContacts(t *testing.T) {
	conn := setupDB(t)
	alice := createUser(t, conn, "alice")
	bob := createUser(t, conn, "bob")
	from := createContact(t, conn, alice.ID, "From", "555-0100")
	to := createContact(t, conn, alice.ID, "To")
	foreign := createContact(t, conn, bob.ID, "Foreign")
	svc := NewPhoneService(conn)
	ctx := context.Background()

	phones, err := svc.List(ctx, alice.ID, &from.ID)
	require.NoError(t, err)
	id := phones[0].ID

	_, err = svc.Update(ctx, alice.ID, id, PhoneInput{Number: "555-0100", ContactID: &foreign.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	moved, err := svc.Update(ctx, alice.ID, id, PhoneInput{Number: "555-0100", ContactID: &to.ID})
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.ContactID)
}

func TestPhoneService_ListAllOwned(t *testing.T) {
	conn := setupDB(t)
	alice := createUser(t, conn, "alice")
	bob := createUser(t, conn, "bob")
	createContact(t, conn, alice.ID, "A", "555-0100")
	createContact(t, conn, alice.ID, "B", "555-0101", "555-0102")
	createContact(t, conn, bob.ID, "C", "555-0103")

	phones, err := NewPhoneService(conn).List(context.Background(), alice.ID, nil)
	require.NoError(t, err)
	assert.Len(t, phones, 3)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "555-0100", want: "555-0100", ok: true},
		{in: " +44 20 7946 0958 ", want: "+44 20 7946 0958", ok: true},
		{in: "+1 (555) 010-0100 00", want: "+1 (555) 010-0100 00", ok: true},
		{in: "+1 (555) 010-0100 0000", want: "+155501001000000", ok: true},
		{in: "", ok: false},
		{in: "12", ok: false},
		{in: "555-CALL", ok: false},
		{in: "5+55", ok: false},
		{in: "1234567890123456", ok: false},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

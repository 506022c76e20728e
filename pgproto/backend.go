package pgproto

import (
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// Authentication is the parsed body of an Authentication ('R') message.
type Authentication struct {
	Type types.AuthType
	Salt []byte // 4 bytes, only set for AuthMD5Password
}

// ParseAuthentication parses the 32-bit discriminator and, for
// AuthMD5Password, the trailing 4-byte salt.
func ParseAuthentication(r *buffer.Reader) (Authentication, error) {
	v, err := r.GetUint32()
	if err != nil {
		return Authentication{}, err
	}

	msg := Authentication{Type: types.AuthType(v)}
	if msg.Type == types.AuthMD5Password {
		salt, err := r.GetBytes(4)
		if err != nil {
			return Authentication{}, err
		}

		msg.Salt = salt
	}

	if err := r.ExpectDone("Authentication"); err != nil {
		return Authentication{}, err
	}

	return msg, nil
}

// BackendKeyData is the parsed body of a BackendKeyData ('K') message.
type BackendKeyData struct {
	ProcessID int32
	SecretKey int32
}

func ParseBackendKeyData(r *buffer.Reader) (BackendKeyData, error) {
	pid, err := r.GetInt32()
	if err != nil {
		return BackendKeyData{}, err
	}

	key, err := r.GetInt32()
	if err != nil {
		return BackendKeyData{}, err
	}

	if err := r.ExpectDone("BackendKeyData"); err != nil {
		return BackendKeyData{}, err
	}

	return BackendKeyData{ProcessID: pid, SecretKey: key}, nil
}

// ParameterStatus is the parsed body of a ParameterStatus ('S') message.
type ParameterStatus struct {
	Name  string
	Value string
}

func ParseParameterStatus(r *buffer.Reader) (ParameterStatus, error) {
	name, err := r.GetString()
	if err != nil {
		return ParameterStatus{}, err
	}

	value, err := r.GetString()
	if err != nil {
		return ParameterStatus{}, err
	}

	if err := r.ExpectDone("ParameterStatus"); err != nil {
		return ParameterStatus{}, err
	}

	return ParameterStatus{Name: name, Value: value}, nil
}

// ParseReadyForQuery parses the single status byte of a ReadyForQuery ('Z') message.
func ParseReadyForQuery(r *buffer.Reader) (types.TransactionStatus, error) {
	b, err := r.GetByte()
	if err != nil {
		return 0, err
	}

	if err := r.ExpectDone("ReadyForQuery"); err != nil {
		return 0, err
	}

	return types.TransactionStatus(b), nil
}

// FieldDescription describes a single RowDescription column.
type FieldDescription struct {
	Name         string
	TableOID     oid.Oid
	AttrNo       int16
	TypeOID      oid.Oid
	TypeSize     int16
	TypeModifier int32
	Format       format.Code
}

// RowDescription is the parsed body of a RowDescription ('T') message.
type RowDescription struct {
	Fields []FieldDescription
}

func ParseRowDescription(r *buffer.Reader) (RowDescription, error) {
	count, err := r.GetUint16()
	if err != nil {
		return RowDescription{}, err
	}

	fields := make([]FieldDescription, 0, count)
	for i := uint16(0); i < count; i++ {
		name, err := r.GetString()
		if err != nil {
			return RowDescription{}, err
		}

		tableOID, err := r.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}

		attrNo, err := r.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}

		typeOID, err := r.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}

		typeSize, err := r.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}

		typeModifier, err := r.GetInt32()
		if err != nil {
			return RowDescription{}, err
		}

		fc, err := r.GetInt16()
		if err != nil {
			return RowDescription{}, err
		}

		fields = append(fields, FieldDescription{
			Name:         name,
			TableOID:     oid.Oid(tableOID),
			AttrNo:       attrNo,
			TypeOID:      oid.Oid(typeOID),
			TypeSize:     typeSize,
			TypeModifier: typeModifier,
			Format:       format.Code(fc),
		})
	}

	if err := r.ExpectDone("RowDescription"); err != nil {
		return RowDescription{}, err
	}

	return RowDescription{Fields: fields}, nil
}

// DataRow is the parsed body of a DataRow ('D') message. A nil element of
// Values denotes a SQL NULL; non-null elements are slices of the Reader's
// receive buffer, which later reads do not overwrite.
type DataRow struct {
	Values [][]byte
}

func ParseDataRow(r *buffer.Reader) (DataRow, error) {
	count, err := r.GetUint16()
	if err != nil {
		return DataRow{}, err
	}

	values := make([][]byte, 0, count)
	for i := uint16(0); i < count; i++ {
		length, err := r.GetInt32()
		if err != nil {
			return DataRow{}, err
		}

		value, err := r.GetBytes(int(length))
		if err != nil {
			return DataRow{}, err
		}

		values = append(values, value)
	}

	if err := r.ExpectDone("DataRow"); err != nil {
		return DataRow{}, err
	}

	return DataRow{Values: values}, nil
}

// CommandComplete is the parsed body of a CommandComplete ('C') message.
type CommandComplete struct {
	Tag string
}

func ParseCommandComplete(r *buffer.Reader) (CommandComplete, error) {
	tag, err := r.GetString()
	if err != nil {
		return CommandComplete{}, err
	}

	if err := r.ExpectDone("CommandComplete"); err != nil {
		return CommandComplete{}, err
	}

	return CommandComplete{Tag: tag}, nil
}

// NotificationResponse is the parsed body of a NotificationResponse ('A') message.
type NotificationResponse struct {
	ProcessID int32
	Channel   string
	Payload   string
}

func ParseNotificationResponse(r *buffer.Reader) (NotificationResponse, error) {
	pid, err := r.GetInt32()
	if err != nil {
		return NotificationResponse{}, err
	}

	channel, err := r.GetString()
	if err != nil {
		return NotificationResponse{}, err
	}

	payload, err := r.GetString()
	if err != nil {
		return NotificationResponse{}, err
	}

	if err := r.ExpectDone("NotificationResponse"); err != nil {
		return NotificationResponse{}, err
	}

	return NotificationResponse{ProcessID: pid, Channel: channel, Payload: payload}, nil
}

// ParameterDescription is the parsed body of a ParameterDescription ('t') message.
type ParameterDescription struct {
	OIDs []oid.Oid
}

func ParseParameterDescription(r *buffer.Reader) (ParameterDescription, error) {
	count, err := r.GetUint16()
	if err != nil {
		return ParameterDescription{}, err
	}

	oids := make([]oid.Oid, 0, count)
	for i := uint16(0); i < count; i++ {
		v, err := r.GetInt32()
		if err != nil {
			return ParameterDescription{}, err
		}

		oids = append(oids, oid.Oid(v))
	}

	if err := r.ExpectDone("ParameterDescription"); err != nil {
		return ParameterDescription{}, err
	}

	return ParameterDescription{OIDs: oids}, nil
}

// CopyResponse is the parsed body shared by CopyInResponse, CopyOutResponse
// and CopyBothResponse.
type CopyResponse struct {
	Format        format.Code
	ColumnFormats []format.Code
}

func ParseCopyResponse(r *buffer.Reader) (CopyResponse, error) {
	overall, err := r.GetByte()
	if err != nil {
		return CopyResponse{}, err
	}

	count, err := r.GetUint16()
	if err != nil {
		return CopyResponse{}, err
	}

	formats := make([]format.Code, 0, count)
	for i := uint16(0); i < count; i++ {
		fc, err := r.GetInt16()
		if err != nil {
			return CopyResponse{}, err
		}

		formats = append(formats, format.Code(fc))
	}

	if err := r.ExpectDone("CopyResponse"); err != nil {
		return CopyResponse{}, err
	}

	return CopyResponse{Format: format.Code(overall), ColumnFormats: formats}, nil
}

// ParseCopyData returns the raw bytes of a CopyData ('d') message body.
// The returned slice borrows the receive buffer.
func ParseCopyData(r *buffer.Reader) ([]byte, error) {
	return r.GetBytes(len(r.Msg))
}

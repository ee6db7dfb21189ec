package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Row is a schemaless record as exchanged with the persistence layer.
type Row map[string]interface{}

// ErrMalformedRow reports a stored row that cannot be shaped into a domain entity.
var ErrMalformedRow = errors.New("malformed row")

// Column names of the trash table.
const (
	ColID        = "id"
	ColUserID    = "user_id"
	ColTrashType = "trash_type"
	ColQuantity  = "quantity"
	ColFloor     = "floor"
	ColRoom      = "room"
	ColTime      = "time"
	ColPhotoURLs = "photo_urls"
	ColCreatedAt = "created_at"
)

// Column names of the profiles table.
const (
	ColFirstName  = "first_name"
	ColLastName   = "last_name"
	ColDepartment = "department"
)

// TrashRow shapes a record into the payload written to the trash table.
// The category is stored as its resolved label.
func TrashRow(r WasteRecord) Row {
	photos := r.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return Row{
		ColUserID:    r.OwnerID,
		ColTrashType: r.Label(),
		ColQuantity:  r.Quantity,
		ColFloor:     r.Floor,
		ColRoom:      r.Room,
		ColTime:      r.OccurredAt.UTC(),
		ColPhotoURLs: photos,
	}
}

func ParseWasteRecord(row Row) (WasteRecord, error) {
	var rec WasteRecord
	var err error

	if rec.ID, err = row.id(ColID); err != nil {
		return WasteRecord{}, err
	}
	if rec.OwnerID, err = row.id(ColUserID); err != nil {
		return WasteRecord{}, err
	}
	label, err := row.text(ColTrashType)
	if err != nil {
		return WasteRecord{}, err
	}
	if strings.TrimSpace(label) == "" {
		return WasteRecord{}, fmt.Errorf("%w: empty %s", ErrMalformedRow, ColTrashType)
	}
	rec.Category, rec.CustomCategory = CategoryFromLabel(label)
	if rec.Quantity, err = row.quantity(); err != nil {
		return WasteRecord{}, err
	}
	if rec.Floor, err = row.text(ColFloor); err != nil {
		return WasteRecord{}, err
	}
	if rec.Room, err = row.text(ColRoom); err != nil {
		return WasteRecord{}, err
	}
	if rec.OccurredAt, err = row.timestamp(ColTime); err != nil {
		return WasteRecord{}, err
	}
	if rec.PhotoURLs, err = row.list(ColPhotoURLs); err != nil {
		return WasteRecord{}, err
	}
	if v, ok := row[ColCreatedAt]; ok && v != nil {
		if rec.CreatedAt, err = row.timestamp(ColCreatedAt); err != nil {
			return WasteRecord{}, err
		}
	}
	return rec, nil
}

func ParseContribution(row Row) (Contribution, error) {
	owner, err := row.id(ColUserID)
	if err != nil {
		return Contribution{}, err
	}
	qty, err := row.quantity()
	if err != nil {
		return Contribution{}, err
	}
	return Contribution{OwnerID: owner, Quantity: qty}, nil
}

func ParseProfile(row Row) (Profile, error) {
	var p Profile
	var err error
	if p.ID, err = row.id(ColID); err != nil {
		return Profile{}, err
	}
	if p.FirstName, err = row.text(ColFirstName); err != nil {
		return Profile{}, err
	}
	if p.LastName, err = row.text(ColLastName); err != nil {
		return Profile{}, err
	}
	if p.Department, err = row.text(ColDepartment); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// RecordID reads the id column.
func (r Row) RecordID() (uuid.UUID, error) {
	return r.id(ColID)
}

func (r Row) value(col string) (interface{}, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedRow, col)
	}
	return v, nil
}

func (r Row) id(col string) (uuid.UUID, error) {
	v, err := r.value(col)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	switch t := v.(type) {
	case uuid.UUID:
		id = t
	case [16]byte:
		id = uuid.UUID(t)
	case string:
		id, err = uuid.Parse(t)
	case []byte:
		if len(t) == 16 {
			id, err = uuid.FromBytes(t)
		} else {
			id, err = uuid.ParseBytes(t)
		}
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, col, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: nil %s", ErrMalformedRow, col)
	}
	return id, nil
}

func (r Row) text(col string) (string, error) {
	v, err := r.value(col)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("%w: %s has type %T", ErrMalformedRow, col, v)
	}
}

// quantity accepts any integral representation and rejects non-positive values.
func (r Row) quantity() (int, error) {
	v, err := r.value(ColQuantity)
	if err != nil {
		return 0, err
	}
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return 0, fmt.Errorf("%w: %s is not an integer", ErrMalformedRow, ColQuantity)
		}
		n = int64(t)
	case json.Number:
		n, err = t.Int64()
	case string:
		n, err = strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	case []byte:
		n, err = strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedRow, ColQuantity, err)
	}
	if n <= 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s out of range: %d", ErrMalformedRow, ColQuantity, n)
	}
	return int(n), nil
}

func (r Row) timestamp(col string) (time.Time, error) {
	v, err := r.value(col)
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, perr := time.Parse(time.RFC3339Nano, t)
		if perr != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrMalformedRow, col, perr)
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s has type %T", ErrMalformedRow, col, v)
	}
}

// list reads a list column that may arrive decoded or as raw JSON.
func (r Row) list(col string) ([]string, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return []string{}, nil
	}
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s contains %T", ErrMalformedRow, col, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return decodeStringList(col, []byte(t))
	case []byte:
		return decodeStringList(col, t)
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrMalformedRow, col, v)
	}
}

func decodeStringList(col string, raw []byte) ([]string, error) {
	out := []string{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, col, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// ErrNotFound reports that no stored row matched the id and owner filter.
var ErrNotFound = errors.New("not found")

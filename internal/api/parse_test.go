package api

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name      string
		body      Body
		wantLen   int
		wantErr   string
		wantIndex int
		wantField string
	}{
		{name: "nil body", body: nil, wantLen: 0},
		{name: "empty array", body: JSONBody(`[]`), wantLen: 0},
		{name: "two items", body: JSONBody(`[{"actionCode":"A"},{"actionCode":"B","title":{"text":"t"}}]`), wantLen: 2},
		{name: "object", body: JSONBody(`{"actionCode":"A"}`), wantErr: "expected a JSON array, got object", wantIndex: -1},
		{name: "null", body: JSONBody(`null`), wantErr: "got null", wantIndex: -1},
		{name: "string body", body: StringBody(`[{"actionCode":"A"}]`), wantLen: 1},
		{name: "missing action code", body: JSONBody(`[{"actionCode":"A"},{"message":"x"}]`), wantErr: "required", wantIndex: 1, wantField: "actionCode"},
		{name: "title without text", body: JSONBody(`[{"actionCode":"A","title":{}}]`), wantErr: "required", wantIndex: 0, wantField: "title.text"},
		{name: "wrong type", body: JSONBody(`[{"actionCode":5}]`), wantErr: "cannot unmarshal", wantIndex: 0, wantField: "actionCode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := DecodeList[FeedItem](tt.body)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if items == nil || len(items) != tt.wantLen {
					t.Errorf("got %d items (nil=%v), want %d", len(items), items == nil, tt.wantLen)
				}
				return
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
			if pe.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", pe.Index, tt.wantIndex)
			}
			if pe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", pe.Field, tt.wantField)
			}
			if pe.Target != "[]api.FeedItem" {
				t.Errorf("Target = %q", pe.Target)
			}
		})
	}
}

func TestDecodeList_KeepsOrder(t *testing.T) {
	records, err := DecodeList[DataRecord](JSONBody(`[
		{"endpoint":"ns/ep","recordId":"3","data":{"n":3}},
		{"endpoint":"ns/ep","recordId":"1","data":{"n":1}},
		{"endpoint":"ns/ep","recordId":"2","data":null}
	]`))
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.RecordID)
	}
	if strings.Join(ids, ",") != "3,1,2" {
		t.Errorf("order = %v", ids)
	}
	if string(records[0].Data) != `{"n":3}` {
		t.Errorf("Data = %s", records[0].Data)
	}
}

func TestDecodeObject(t *testing.T) {
	tool, err := DecodeObject[Tool](JSONBody(`{"id":"t1","info":{"name":"Tool"},"status":{"enabled":true}}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if tool.ID != "t1" || !tool.Status.Enabled {
		t.Errorf("tool = %+v", tool)
	}

	for name, body := range map[string]Body{
		"nil":         nil,
		"array":       JSONBody(`[]`),
		"null":        JSONBody(`null`),
		"missing id":  JSONBody(`{"info":{}}`),
		"number body": JSONBody(`42`),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeObject[Tool](body); !IsParseError(err) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		body Body
		want string
	}{
		{nil, ""},
		{StringBody("plain\n"), "plain\n"},
		{JSONBody(`"quoted"`), "quoted"},
		{JSONBody(`{"a":1}`), `{"a":1}`},
	}
	for _, tt := range tests {
		got, err := DecodeString(tt.body)
		if err != nil {
			t.Errorf("DecodeString(%#v): %v", tt.body, err)
		}
		if got != tt.want {
			t.Errorf("DecodeString(%#v) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestDecodeAck(t *testing.T) {
	ack, err := DecodeAck(nil)
	if err != nil || ack.Message != "" {
		t.Errorf("DecodeAck(nil) = %+v, %v", ack, err)
	}
	ack, err = DecodeAck(JSONBody(`{"message":"done"}`))
	if err != nil || ack.Message != "done" {
		t.Errorf("DecodeAck = %+v, %v", ack, err)
	}
	if _, err := DecodeAck(JSONBody(`[]`)); !IsParseError(err) {
		t.Errorf("DecodeAck([]) should fail, got %v", err)
	}
}

func TestFeedDate_Time(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		date FeedDate
		want time.Time
	}{
		{"unix wins", FeedDate{ISO: "2000-01-01T00:00:00Z", Unix: want.Unix()}, want},
		{"iso", FeedDate{ISO: "2026-01-02T04:04:05+01:00"}, want},
		{"garbage", FeedDate{ISO: "yesterday"}, time.Time{}},
	}
	for _, tt := range tests {
		if got := tt.date.Time(); !got.Equal(tt.want) {
			t.Errorf("%s: Time() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Target: "[]api.FeedItem", Index: 2, Field: "date.iso", Err: errors.New("failed \"required\" validation")}
	want := `cannot decode []api.FeedItem (element 2, field "date.iso"): failed "required" validation`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ParseError{Target: "api.Tool", Index: -1, Field: "id", Err: errors.New("bad")}
	if err.Error() != `cannot decode api.Tool (field "id"): bad` {
		t.Errorf("Error() = %q", err.Error())
	}
}

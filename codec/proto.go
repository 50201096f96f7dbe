package codec

import (
	"encoding/json"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"versiond/transform"
)

const MediaTypeProtobuf = "application/x-protobuf"

// ProtoStruct carries payloads as a binary google.protobuf.Struct. Struct
// fields are a protobuf map, so field order is not preserved on decode.
type ProtoStruct struct{}

func (ProtoStruct) MediaType() string { return MediaTypeProtobuf }

func (ProtoStruct) Decode(r io.Reader) (*transform.Payload, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s structpb.Struct
	if err := proto.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	js, err := protojson.Marshal(&s)
	if err != nil {
		return nil, err
	}
	p := transform.NewPayload()
	if err := json.Unmarshal(js, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (ProtoStruct) Encode(w io.Writer, p *transform.Payload) error {
	s, err := ToStruct(p)
	if err != nil {
		return err
	}
	raw, err := proto.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// ToStruct converts a payload into a protobuf Struct through its JSON form,
// so any value encoding/json accepts is accepted here.
func ToStruct(p *transform.Payload) (*structpb.Struct, error) {
	js, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if p == nil {
		return s, nil
	}
	if err := protojson.Unmarshal(js, s); err != nil {
		return nil, err
	}
	return s, nil
}

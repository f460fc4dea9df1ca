// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	mapQZsXV5Myc7bFOxAxmxCTgAΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	sliceBAVSYcwGhy3YjqLK4Ru9vAΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var SourceStatusMUS = sourceStatusMUS{}

type sourceStatusMUS struct{}

func (s sourceStatusMUS) Marshal(v SourceStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s sourceStatusMUS) Unmarshal(bs []byte) (v SourceStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = SourceStatus(tmp)
	return
}

func (s sourceStatusMUS) Size(v SourceStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s sourceStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ArtifactStatusMUS = artifactStatusMUS{}

type artifactStatusMUS struct{}

func (s artifactStatusMUS) Marshal(v ArtifactStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s artifactStatusMUS) Unmarshal(bs []byte) (v ArtifactStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ArtifactStatus(tmp)
	return
}

func (s artifactStatusMUS) Size(v ArtifactStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s artifactStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var SourceFileMUS = sourceFileMUS{}

type sourceFileMUS struct{}

func (s sourceFileMUS) Marshal(v SourceFile, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Path, bs[n:])
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += SourceStatusMUS.Marshal(v.Status, bs[n:])
	n += varint.Uint64.Marshal(v.ResumeOffset, bs[n:])
	n += varint.Uint64.Marshal(v.TotalRows, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s sourceFileMUS) Unmarshal(bs []byte) (v SourceFile, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Path, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = SourceStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ResumeOffset, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalRows, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s sourceFileMUS) Size(v SourceFile) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Path)
	size += ord.String.Size(v.Fingerprint)
	size += SourceStatusMUS.Size(v.Status)
	size += varint.Uint64.Size(v.ResumeOffset)
	size += varint.Uint64.Size(v.TotalRows)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s sourceFileMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SourceStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var RowMUS = rowMUS{}

type rowMUS struct{}

func (s rowMUS) Marshal(v Row, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.SourceId, bs[n:])
	n += varint.Uint64.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Marshal(v.Fields, bs[n:])
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += ord.String.Marshal(v.ArtifactId, bs[n:])
	n += ArtifactStatusMUS.Marshal(v.ArtifactStatus, bs[n:])
	n += ord.String.Marshal(v.ArtifactError, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s rowMUS) Unmarshal(bs []byte) (v Row, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.SourceId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fields, n1, err = mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ArtifactId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ArtifactStatus, n1, err = ArtifactStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ArtifactError, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s rowMUS) Size(v Row) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.SourceId)
	size += varint.Uint64.Size(v.Position)
	size += ord.String.Size(v.Content)
	size += mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Size(v.Fields)
	size += ord.String.Size(v.Fingerprint)
	size += ord.String.Size(v.ArtifactId)
	size += ArtifactStatusMUS.Size(v.ArtifactStatus)
	size += ord.String.Size(v.ArtifactError)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s rowMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ArtifactStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var LeaseMUS = leaseMUS{}

type leaseMUS struct{}

func (s leaseMUS) Marshal(v Lease, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += ord.String.Marshal(v.Owner, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.ExpiresAt, bs[n:])
}

func (s leaseMUS) Unmarshal(bs []byte) (v Lease, n int, err error) {
	v.Key, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Owner, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExpiresAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s leaseMUS) Size(v Lease) (size int) {
	size = ord.String.Size(v.Key)
	size += ord.String.Size(v.Owner)
	return size + raw.TimeUnixMicro.Size(v.ExpiresAt)
}

func (s leaseMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var IndexEntryMUS = indexEntryMUS{}

type indexEntryMUS struct{}

func (s indexEntryMUS) Marshal(v IndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += sliceBAVSYcwGhy3YjqLK4Ru9vAΞΞ.Marshal(v.Vector, bs[n:])
	return n + mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Marshal(v.Metadata, bs[n:])
}

func (s indexEntryMUS) Unmarshal(bs []byte) (v IndexEntry, n int, err error) {
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Vector, n1, err = sliceBAVSYcwGhy3YjqLK4Ru9vAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s indexEntryMUS) Size(v IndexEntry) (size int) {
	size = ord.String.Size(v.Id)
	size += sliceBAVSYcwGhy3YjqLK4Ru9vAΞΞ.Size(v.Vector)
	return size + mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Size(v.Metadata)
}

func (s indexEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = sliceBAVSYcwGhy3YjqLK4Ru9vAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = mapQZsXV5Myc7bFOxAxmxCTgAΞΞ.Skip(bs[n:])
	n += n1
	return
}

package msd

import (
	"github.com/pkg/errors"
	"gonum.org/v1/hdf5"
)

// h5File is a source backed by an open HDF5 file.
type h5File struct {
	f *hdf5.File
}

func openH5(path string) (*h5File, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, errors.Wrap(err, "opening hdf5 file")
	}
	return &h5File{f: f}, nil
}

func (h *h5File) Close() error {
	return h.f.Close()
}

// raw reads the whole dataset in its file datatype. It returns the bytes, the
// element width, the number of elements and the datatype, which the caller
// must close.
func (h *h5File) raw(name string) (buf []byte, width, n int, dt *hdf5.Datatype, err error) {
	ds, err := h.f.OpenDataset(name)
	if err != nil {
		return nil, 0, 0, nil, errors.Wrapf(err, "opening dataset %s", name)
	}
	defer ds.Close()
	space := ds.Space()
	n = space.SimpleExtentNPoints()
	space.Close()
	dt, err = ds.Datatype()
	if err != nil {
		return nil, 0, 0, nil, errors.Wrapf(err, "getting datatype of %s", name)
	}
	width = int(dt.Size())
	buf = make([]byte, width*n)
	if len(buf) > 0 {
		if err := ds.Read(&buf); err != nil {
			dt.Close()
			return nil, 0, 0, nil, errors.Wrapf(err, "reading %s", name)
		}
	}
	return buf, width, n, dt, nil
}

func (h *h5File) table(name string) (*compound, error) {
	buf, width, n, dt, err := h.raw(name)
	if err != nil {
		return nil, err
	}
	defer dt.Close()
	ct := &hdf5.CompoundType{Datatype: *dt}
	c := &compound{
		name:    name,
		size:    width,
		rows:    n,
		buf:     buf,
		members: make(map[string]member, ct.NMembers()),
	}
	for i := 0; i < ct.NMembers(); i++ {
		mt, err := ct.MemberType(i)
		if err != nil {
			return nil, errors.Wrapf(err, "getting type of member %d of %s", i, name)
		}
		c.members[ct.MemberName(i)] = member{
			offset: ct.MemberOffset(i),
			size:   int(mt.Size()),
			kind:   kindOf(ct.MemberClass(i)),
		}
		mt.Close()
	}
	return c, nil
}

func (h *h5File) strings(name string) ([]string, error) {
	buf, width, n, dt, err := h.raw(name)
	if err != nil {
		return nil, err
	}
	dt.Close()
	return splitStrings(buf, width, n)
}

func (h *h5File) floats(name string) ([]float64, error) {
	buf, width, n, dt, err := h.raw(name)
	if err != nil {
		return nil, err
	}
	dt.Close()
	return splitFloats(buf, width, n)
}

func kindOf(c hdf5.TypeClass) kind {
	switch c {
	case hdf5.T_STRING:
		return kindString
	case hdf5.T_FLOAT:
		return kindFloat
	case hdf5.T_INTEGER:
		return kindInt
	}
	return kindOther
}

package walker

import "encoding/binary"

// Linux dirent64 layout:
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;    /* offset 0 */
//	    off64_t        d_off;    /* offset 8 */
//	    unsigned short d_reclen; /* offset 16 */
//	    unsigned char  d_type;   /* offset 18 */
//	    char           d_name[]; /* offset 19, NUL terminated */
//	};
const direntHeader = 19

// d_type values from dirent.h that the walker acts on.
const (
	dtUnknown = 0
	dtDir     = 4
	dtReg     = 8
	dtLnk     = 10
)

// dirent is one parsed directory entry.
type dirent struct {
	name  string
	dtype uint8
}

// parseDirents decodes n bytes of getdents64 output, skipping "." and "..".
// dst is reused across calls.
func parseDirents(buf []byte, n int, dst []dirent) []dirent {
	entries := dst[:0]
	for off := 0; off+direntHeader <= n; {
		reclen := int(binary.LittleEndian.Uint16(buf[off+16:]))
		if reclen == 0 {
			break
		}
		end := min(off+reclen, n)
		name := buf[off+direntHeader : end]
		for i, c := range name {
			if c == 0 {
				name = name[:i]
				break
			}
		}
		if s := string(name); s != "." && s != ".." {
			entries = append(entries, dirent{name: s, dtype: buf[off+18]})
		}
		off += reclen
	}
	return entries
}

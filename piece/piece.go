package piece

import (
	"bytes"
	"crypto/sha1"
	"errors"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/util"
	"github.com/anacrolix/torrent/metainfo"
)

// Length of a SHA-1 piece hash in a metainfo 'pieces' blob
const HASH_LENGTH = sha1.Size

var ERR_PIECE_BAD_HASHES = errors.New("ERR_PIECE_BAD_HASHES")

type PieceStatus int

const (
	PIECESTATUS_MISSING PieceStatus = 0
	PIECESTATUS_CORRUPT PieceStatus = iota
	PIECESTATUS_DONE    PieceStatus = iota
)

func (self PieceStatus) String() string {
	switch self {
	case PIECESTATUS_MISSING:
		return "missing"
	case PIECESTATUS_CORRUPT:
		return "corrupt"
	case PIECESTATUS_DONE:
		return "done"
	}
	return "unknown"
}

type Piece struct {
	Idx    int
	Begin  int64
	Length int64
	Hash   [HASH_LENGTH]byte
}

// CalculatePieces splits 'totalLength' into 'pieceLength'-sized pieces. The
// last piece holds the remainder, if any
func CalculatePieces(totalLength, pieceLength int64) []*Piece {
	pieces := []*Piece{}
	if pieceLength <= 0 {
		return pieces
	}
	idx := 0
	for begin := int64(0); begin < totalLength; begin += pieceLength {
		length := pieceLength
		if totalLength-begin < pieceLength {
			length = totalLength - begin
		}
		pieces = append(pieces, &Piece{Idx: idx, Begin: begin, Length: length})
		idx++
	}
	return pieces
}

// HashPieces returns the concatenated SHA-1 hashes of every piece of 'buff',
// in the layout of a metainfo 'pieces' field
func HashPieces(buff []byte, pieceLength int64) []byte {
	pieces := CalculatePieces(int64(len(buff)), pieceLength)
	hashes := make([]byte, 0, len(pieces)*HASH_LENGTH)
	for _, p := range pieces {
		h := sha1.Sum(buff[p.Begin : p.Begin+p.Length])
		hashes = append(hashes, h[:]...)
	}
	return hashes
}

// PiecesFromInfo rebuilds hashed pieces out of a single-file metainfo
func PiecesFromInfo(info *metainfo.Info) ([]*Piece, error) {
	if len(info.Pieces)%HASH_LENGTH != 0 {
		return nil, print.ErrorWrapf(ERR_PIECE_BAD_HASHES,
			"pieces blob of %d bytes is not a multiple of %d",
			len(info.Pieces), HASH_LENGTH)
	}
	pieces := CalculatePieces(info.TotalLength(), info.PieceLength)
	if len(pieces) != len(info.Pieces)/HASH_LENGTH {
		return nil, print.ErrorWrapf(ERR_PIECE_BAD_HASHES,
			"expected %d hashes, found %d",
			len(pieces), len(info.Pieces)/HASH_LENGTH)
	}
	for _, p := range pieces {
		copy(p.Hash[:], info.Pieces[p.Idx*HASH_LENGTH:(p.Idx+1)*HASH_LENGTH])
	}
	return pieces, nil
}

// Check hashes this piece's range of the whole-file 'buff'
func (self *Piece) Check(buff []byte) PieceStatus {
	if int64(len(buff)) < self.Begin+self.Length {
		return PIECESTATUS_MISSING
	}
	h := sha1.Sum(buff[self.Begin : self.Begin+self.Length])
	if !bytes.Equal(h[:], self.Hash[:]) {
		return PIECESTATUS_CORRUPT
	}
	return PIECESTATUS_DONE
}

func (self *Piece) Verify(buff []byte) bool {
	return self.Check(buff) == PIECESTATUS_DONE
}

// VerifyAll returns a bitfield with bit 'i' set if piece 'i' verified
func VerifyAll(pieces []*Piece, buff []byte) util.Bitfield {
	bf := util.NewBitfield(len(pieces))
	for _, p := range pieces {
		if p.Verify(buff) {
			bf.Set(p.Idx)
			continue
		}
		print.Debugf("Piece %d [%d:%d] failed verification\n",
			p.Idx, p.Begin, p.Begin+p.Length)
	}
	return bf
}

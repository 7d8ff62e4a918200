package service

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"github.com/bobalog/internal/db"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint 计算记录快照的 BLAKE2b-256 指纹，内容与顺序都相同的快照得到相同指纹。
// 用作统计缓存的键，也作为 HTTP ETag。
func Fingerprint(records []db.DrinkRecord) string {
	h, _ := blake2b.New256(nil)
	for _, record := range records {
		writeString(h, record.ID)
		writeString(h, record.GroupID)
		writeString(h, record.DrinkerName)
		writeString(h, record.Brand)
		writeString(h, record.DrinkName)
		writeString(h, record.SugarLevel)
		writeInt(h, int64(record.SugarValue))
		writeString(h, record.IceLevel)
		writeString(h, record.Toppings)
		writeString(h, record.Review)
		writeInt(h, int64(math.Float64bits(record.Price)))
		writeInt(h, int64(record.Rating))
		writeString(h, record.Date)
		writeInt(h, record.Timestamp)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(h hash.Hash, value string) {
	writeInt(h, int64(len(value)))
	h.Write([]byte(value))
}

func writeInt(h hash.Hash, value int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(value))
	h.Write(buf[:])
}

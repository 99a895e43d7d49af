package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/jawab/core"
)

// Key prefixes for different data types
const (
	knowledgePrefix       = "faqrec"
	knowledgeLookupPrefix = "faqlook"
	knowledgeDomainPrefix = "faqdom"
	knowledgeIDSeq        = "faqrecseq"
	vectorPrefix          = "faqvec"
)

// makeKnowledgeKey generates a key for a knowledge entry by ID.
func makeKnowledgeKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", knowledgePrefix, id))
}

// makeLookupKey generates a key for the (domain, normalized question)
// fingerprint index. Format: prefix:fingerprint (8 bytes BigEndian).
func makeLookupKey(fingerprint uint64) []byte {
	prefix := knowledgeLookupPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], fingerprint)
	return buf
}

// makeDomainKey generates a composite key for the domain index.
// Format: prefix:domain\x00id. The NUL separator keeps one domain's
// range from bleeding into another's during prefix iteration, and the
// BigEndian id keeps iteration in insert order.
func makeDomainKey(domain string, id core.ID) []byte {
	prefix := knowledgeDomainPrefix + ":" + domain
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = 0
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeVectorKey generates a key for one entry's persisted embedding.
// Format: prefix:domain\x00id, same shape as the domain index keys.
func makeVectorKey(domain string, id core.ID) []byte {
	prefix := vectorPrefix + ":" + domain
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = 0
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeVectorPrefix generates the iteration prefix for a domain's
// persisted embeddings. An empty domain covers all domains.
func makeVectorPrefix(domain string) []byte {
	if domain == "" {
		return []byte(vectorPrefix + ":")
	}
	prefix := vectorPrefix + ":" + domain
	buf := make([]byte, len(prefix)+1)
	offset := copy(buf, prefix)
	buf[offset] = 0
	return buf
}

// splitVectorKey extracts the domain and id from a vector key.
func splitVectorKey(key []byte) (domain string, id core.ID, ok bool) {
	body := key[len(vectorPrefix)+1:]
	sep := -1
	for n, b := range body {
		if b == 0 {
			sep = n
			break
		}
	}
	if sep < 0 || len(body) != sep+1+8 {
		return "", 0, false
	}
	return string(body[:sep]), core.ID(binary.BigEndian.Uint64(body[sep+1:])), true
}

// makeDomainPrefix generates the iteration prefix for a domain's
// index entries. An empty domain yields the prefix for all domains.
func makeDomainPrefix(domain string) []byte {
	if domain == "" {
		return []byte(knowledgeDomainPrefix + ":")
	}
	prefix := knowledgeDomainPrefix + ":" + domain
	buf := make([]byte, len(prefix)+1)
	offset := copy(buf, prefix)
	buf[offset] = 0
	return buf
}

// Package keyslot derives the Redis key pair (Index and Value Map) owned by
// a cache instance, and exposes the Redis Cluster hash-tag and slot rules so
// that co-location of the pair can be checked.
//
// Four naming variants exist:
//
//	Shared                 {prefix}{name}:{tag}:0            {prefix}{name}:{tag}:1
//	PerFunction            {prefix}{name}:{tag}-m:{fn}#{sum}:0
//	SharedClustered        {prefix}{{name}:{tag}-c}:0
//	PerFunctionClustered   {prefix}{name}:{tag}-cm:{fn}#{{sum}}:0
//
// where sum is the identity checksum. In the clustered variants the braces
// form a hash tag so both keys of a pair land in the same slot.
package keyslot

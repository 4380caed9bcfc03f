package mcpserver

// OwnershipFormatContract describes the ownership records on_mint imports
// from a content identifier.
const OwnershipFormatContract = `# Collabeat Ownership Record Format

The content stored at a mint CID MUST be a UTF-8 JSON array of records.

## Structure

` + "```" + `json
[
  {
    "owner": "0x5b38da6a701c568545dcfcb03fcb875f56beddc4",
    "data_key": "stem-drums",
    "cid": "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku"
  }
]
` + "```" + `

## Rules

1. **All three fields are required.** A record missing ` + "`" + `owner` + "`" + `, ` + "`" + `data_key` + "`" + `
   or ` + "`" + `cid` + "`" + ` fails the whole mint.
2. ` + "`" + `public_key` + "`" + ` is accepted in place of ` + "`" + `owner` + "`" + `.
3. Every record becomes one metadata entry ` + "`" + `{public_key: owner, alias: "", content: cid}` + "`" + `,
   in array order.
4. ` + "`" + `data_key` + "`" + ` is parsed but not emitted.
5. An empty array is valid and adds no entries.

## Encoded payload

Instead of ` + "`" + `cid` + "`" + `/` + "`" + `ipfs_multiaddr` + "`" + `, on_mint accepts ` + "`" + `data` + "`" + `: the hex ABI
encoding of the tuple ` + "`" + `(string name, string address, string cid)` + "`" + `. A non-empty
name replaces the default ` + "`" + `Collabeat #<token_id>` + "`" + `; an empty cid skips the import.
`

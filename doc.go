// Package cgt computes UK capital gains tax figures from a ledger of share
// transactions. It applies the HMRC share matching rules and reports the
// outcome per tax year.
//
// The core functionalities include:
//   - Ledger Management: Recording share transactions (buys, sells,
//     dividends treated as cost adjustments, capital returns, splits and
//     consolidations) in a plain text or JSONL ledger.
//   - Share Matching: Matching each disposal against acquisitions under the
//     same day rule, the 30 day bed and breakfast rule, and the section 104
//     holding, in that order.
//   - Corporate Actions: Apportioning dividend and capital return amounts
//     over the shares held at the event date, and rescaling holdings through
//     splits and consolidations.
//   - Tax Year Reporting: Aggregating disposals into UK tax years (6 April
//     to 5 April) with gains, losses, the annual exempt amount and the
//     taxable gain.
//   - Data Persistence: Handling the encoding and decoding of ledgers to
//     and from human-readable, version-controllable formats.
//
// This package serves as the foundational logic for the `cgt-tool`
// command-line tool.
package cgt

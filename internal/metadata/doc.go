// Package metadata writes the per-database metadata row and the per-job
// instance_info audit row, and reads and writes the XML load spec.
//
// # Load Spec Format
//
// A load spec is an XML document describing one job:
//
//	<load_spec>
//	  <connection>
//	    <management_system>postgresql</management_system>
//	    <host>localhost:5432</host>
//	    <database>mv_met</database>
//	    <user>met</user>
//	    <local_infile>true</local_infile>
//	  </connection>
//	  <force_dup_file>false</force_dup_file>
//	  <stat_header_db_check>true</stat_header_db_check>
//	  <load_xml>true</load_xml>
//	  <group>Grid stats</group>
//	  <description>GFS vs analysis</description>
//	  <load_note>nightly</load_note>
//	</load_spec>
//
// When the job was started from a load spec file, its raw text is stored in
// instance_info.load_xml. Otherwise the job settings are marshalled into the
// same shape, without the password.
//
// # Metadata
//
// The metadata table holds a single (category, description) row. It is left
// alone when the group is "NO GROUP".
package metadata
